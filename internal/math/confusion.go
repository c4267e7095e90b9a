package math

import (
	"context"
	"fmt"
	"math"

	"github.com/drakos74/free-vis/internal/concurrent"
	"github.com/drakos74/free-vis/internal/metrics"
	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const confusionOp = "confusion_matrix"

// InferClasses lets the confusion matrix derive the number of classes from the data.
const InferClasses = 0

// MaxClasses is the largest number of classes of a confusion matrix.
const MaxClasses = 1 << 12

// Matrix is a confusion matrix.
// Rows are the true labels, columns the predictions.
type Matrix [][]int

// NewMatrix creates a zero confusion matrix for the given number of classes.
func NewMatrix(numClasses int) Matrix {
	m := make(Matrix, numClasses)
	for i := range m {
		m[i] = make([]int, numClasses)
	}
	return m
}

// Classes returns the number of classes.
func (m Matrix) Classes() int {
	return len(m)
}

// Total returns the number of samples in the matrix.
func (m Matrix) Total() int {
	total := 0
	for _, row := range m {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Accuracy is the fraction of samples on the diagonal.
// It is NaN for an empty matrix.
func (m Matrix) Accuracy() float64 {
	correct := 0
	for i := range m {
		correct += m[i][i]
	}
	return float64(correct) / float64(m.Total())
}

func (m Matrix) add(label, prediction int) error {
	n := len(m)
	if label < 0 || label >= n {
		return fmt.Errorf("label %d for %d classes: %w", label, n, BoundsErr)
	}
	if prediction < 0 || prediction >= n {
		return fmt.Errorf("prediction %d for %d classes: %w", prediction, n, BoundsErr)
	}
	m[label][prediction]++
	return nil
}

// Confusion tabulates the label and prediction pairs into a confusion matrix.
// With InferClasses the number of classes is the largest label or prediction plus one.
// Pairs outside of the class range fail with BoundsErr.
func Confusion(labels, predictions []int, numClasses int) (Matrix, error) {
	if labels == nil || predictions == nil {
		return nil, fmt.Errorf("confusion matrix on nil labels or predictions: %w", InvalidInputErr)
	}
	if len(labels) != len(predictions) {
		return nil, fmt.Errorf("%d labels and %d predictions: %w", len(labels), len(predictions), tensor.ShapeErr)
	}
	if err := checkClasses(numClasses); err != nil {
		return nil, err
	}
	metrics.Observer.Compute(confusionOp)

	if numClasses == InferClasses {
		max := -1
		for i := range labels {
			if labels[i] > max {
				max = labels[i]
			}
			if predictions[i] > max {
				max = predictions[i]
			}
		}
		if err := checkInferred(max); err != nil {
			return nil, err
		}
		numClasses = max + 1
	}

	m := NewMatrix(numClasses)
	for i := range labels {
		if err := m.add(labels[i], predictions[i]); err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
	}
	return m, nil
}

// TensorConfusion tabulates the values of two rank-1 tensors into a confusion matrix.
// When inferring the number of classes the maxima are reduced on the device.
func TensorConfusion(ctx context.Context, labels, predictions tensor.Tensor, numClasses int) (Matrix, error) {
	if labels == nil || predictions == nil {
		return nil, fmt.Errorf("confusion matrix on nil labels or predictions: %w", InvalidInputErr)
	}
	if r := labels.Shape().Rank(); r != 1 {
		return nil, fmt.Errorf("labels must be a 1D tensor, got rank %d: %w", r, tensor.ShapeErr)
	}
	if r := predictions.Shape().Rank(); r != 1 {
		return nil, fmt.Errorf("predictions must be a 1D tensor, got rank %d: %w", r, tensor.ShapeErr)
	}
	if tensor.Size(labels) != tensor.Size(predictions) {
		return nil, fmt.Errorf("%d labels and %d predictions: %w", tensor.Size(labels), tensor.Size(predictions), tensor.ShapeErr)
	}
	if err := checkClasses(numClasses); err != nil {
		return nil, err
	}
	metrics.Observer.Compute(confusionOp)

	if numClasses == InferClasses {
		n, err := inferClasses(ctx, labels, predictions)
		if err != nil {
			return nil, err
		}
		numClasses = n
	}

	var ll, pp xmath.Vector
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ll, err = labels.Data(gctx)
		return err
	})
	g.Go(func() (err error) {
		pp, err = predictions.Data(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := NewMatrix(numClasses)
	for i := range ll {
		label, err := classIndex(ll[i])
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		prediction, err := classIndex(pp[i])
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		if err := m.add(label, prediction); err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
	}

	log.Debug().
		Str("op", confusionOp).
		Int("classes", numClasses).
		Int("pairs", len(ll)).
		Msg("computed confusion matrix")
	return m, nil
}

// TensorConfusionAsync computes the confusion matrix in the background.
func TensorConfusionAsync(ctx context.Context, labels, predictions tensor.Tensor, numClasses int) *concurrent.Promise[Matrix] {
	return concurrent.Async(func() (Matrix, error) {
		return TensorConfusion(ctx, labels, predictions, numClasses)
	})
}

func inferClasses(ctx context.Context, labels, predictions tensor.Tensor) (int, error) {
	if tensor.Size(labels) == 0 {
		return 0, nil
	}

	scope := tensor.NewScope()
	defer scope.Dispose()

	lmax, err := scope.Track(labels.Max())
	if err != nil {
		return 0, err
	}
	pmax, err := scope.Track(predictions.Max())
	if err != nil {
		return 0, err
	}

	l, err := tensor.Scalar(ctx, lmax)
	if err != nil {
		return 0, err
	}
	p, err := tensor.Scalar(ctx, pmax)
	if err != nil {
		return 0, err
	}

	max, err := classIndex(math.Max(l, p))
	if err != nil {
		return 0, fmt.Errorf("could not infer classes: %w", err)
	}
	if max < 0 {
		return 0, nil
	}
	if err := checkInferred(max); err != nil {
		return 0, err
	}
	return max + 1, nil
}

func checkClasses(numClasses int) error {
	if numClasses < 0 {
		return fmt.Errorf("negative number of classes %d: %w", numClasses, InvalidInputErr)
	}
	if numClasses > MaxClasses {
		return fmt.Errorf("%d classes exceed the limit of %d: %w", numClasses, MaxClasses, InvalidInputErr)
	}
	return nil
}

// checkInferred guards the largest index before it becomes the number of classes.
func checkInferred(max int) error {
	if max >= MaxClasses {
		return fmt.Errorf("index %d exceeds the limit of %d classes: %w", max, MaxClasses, BoundsErr)
	}
	return nil
}

// classIndex converts a tensor value into a class index.
func classIndex(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%v is not a class index: %w", v, BoundsErr)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%v is out of the class index range: %w", v, BoundsErr)
	}
	return int(v), nil
}
