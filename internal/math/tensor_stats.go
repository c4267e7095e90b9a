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
	"gonum.org/v1/gonum/floats"
)

// TensorStats returns the summary statistics for the values of the tensor.
// Min, max and zeros are reduced on the device, NaNs are counted on the host copy of the values.
// The device reductions are released before returning.
func TensorStats(ctx context.Context, t tensor.Tensor) (Stats, error) {
	if t == nil {
		return Stats{}, fmt.Errorf("tensor stats on nil tensor: %w", InvalidInputErr)
	}
	metrics.Observer.Compute(tensorStatsOp)

	scope := tensor.NewScope()
	defer scope.Dispose()

	min, err := scope.Track(t.Min())
	if err != nil {
		return Stats{}, err
	}
	max, err := scope.Track(t.Max())
	if err != nil {
		return Stats{}, err
	}
	zeros, err := scope.Track(t.CountEqual(0))
	if err != nil {
		return Stats{}, err
	}

	var values xmath.Vector
	var minVal, maxVal, zerosVal float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		values, err = t.Data(gctx)
		return err
	})
	g.Go(func() (err error) {
		minVal, err = tensor.Scalar(gctx, min)
		return err
	})
	g.Go(func() (err error) {
		maxVal, err = tensor.Scalar(gctx, max)
		return err
	})
	g.Go(func() (err error) {
		zerosVal, err = tensor.Scalar(gctx, zeros)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	numVals := len(values)
	if numVals == 0 {
		observeDegenerate(tensorStatsOp, Stats{})
		return Stats{}, nil
	}

	numNans := floats.Count(math.IsNaN, values)
	if numNans == numVals {
		// device reductions over NaN only values are not reliable
		if !math.IsNaN(minVal) || !math.IsNaN(maxVal) {
			log.Warn().
				Str("tensor", t.ID().String()).
				Float64("min", minVal).
				Float64("max", maxVal).
				Msg("overriding device bounds for all NaN tensor")
		}
		minVal = math.NaN()
		maxVal = math.NaN()
	}

	stats := Stats{
		NumVals:  numVals,
		NumZeros: int(zerosVal),
		NumNans:  numNans,
		Min:      &minVal,
		Max:      &maxVal,
	}
	observeDegenerate(tensorStatsOp, stats)

	log.Debug().
		Str("op", tensorStatsOp).
		Str("tensor", t.ID().String()).
		Int("num_vals", stats.NumVals).
		Int("num_nans", stats.NumNans).
		Msg("computed stats")
	return stats, nil
}

// TensorStatsAsync computes the tensor statistics in the background.
func TensorStatsAsync(ctx context.Context, t tensor.Tensor) *concurrent.Promise[Stats] {
	return concurrent.Async(func() (Stats, error) {
		return TensorStats(ctx, t)
	})
}
