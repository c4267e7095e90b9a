package vis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/drakos74/free-vis/internal/math"
	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/drakos74/go-ex-machina/xmath"
	"golang.org/x/sync/errgroup"
)

// Histogram is the payload for a histogram of values.
type Histogram struct {
	Values []float64   `json:"values"`
	Stats  *math.Stats `json:"stats,omitempty"`
}

// NewHistogram creates a histogram payload with the statistics of the values.
func NewHistogram(values []float64) (Histogram, error) {
	stats, err := math.ArrayStats(values)
	if err != nil {
		return Histogram{}, err
	}
	return Histogram{
		Values: values,
		Stats:  &stats,
	}, nil
}

// Distribution creates the histogram payload for the values of a tensor.
func Distribution(ctx context.Context, t tensor.Tensor) (Histogram, error) {
	if t == nil {
		return Histogram{}, fmt.Errorf("distribution of nil tensor: %w", math.InvalidInputErr)
	}

	var stats math.Stats
	var values xmath.Vector

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = math.TensorStats(gctx, t)
		return err
	})
	g.Go(func() (err error) {
		values, err = t.Data(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Histogram{}, err
	}

	return Histogram{
		Values: values,
		Stats:  &stats,
	}, nil
}

// MarshalJSON encodes the non-finite values as strings.
func (h Histogram) MarshalJSON() ([]byte, error) {
	values := make([]interface{}, len(h.Values))
	for i, v := range h.Values {
		values[i] = math.JSONFloat(v)
	}
	return json.Marshal(struct {
		Values []interface{} `json:"values"`
		Stats  *math.Stats   `json:"stats,omitempty"`
	}{
		Values: values,
		Stats:  h.Stats,
	})
}
