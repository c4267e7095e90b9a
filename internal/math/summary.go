package math

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/drakos74/free-vis/internal/metrics"
	"github.com/rs/zerolog/log"
)

const (
	arrayStatsOp  = "array_stats"
	tensorStatsOp = "tensor_stats"

	emptyInput  = "empty"
	allNaNInput = "all_nan"
)

// Stats are the summary statistics of a set of numbers.
// Min and Max are nil when there are no values,
// and NaN when all values are NaN.
type Stats struct {
	NumVals  int      `json:"numVals"`
	NumZeros int      `json:"numZeros"`
	NumNans  int      `json:"numNans"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// Range returns the min and max values, if they are defined.
func (s Stats) Range() (min, max float64, ok bool) {
	if s.Min == nil || s.Max == nil {
		return math.NaN(), math.NaN(), false
	}
	return *s.Min, *s.Max, true
}

// MarshalJSON encodes the non-finite bounds as strings.
func (s Stats) MarshalJSON() ([]byte, error) {
	type stats struct {
		NumVals  int         `json:"numVals"`
		NumZeros int         `json:"numZeros"`
		NumNans  int         `json:"numNans"`
		Min      interface{} `json:"min,omitempty"`
		Max      interface{} `json:"max,omitempty"`
	}
	ss := stats{
		NumVals:  s.NumVals,
		NumZeros: s.NumZeros,
		NumNans:  s.NumNans,
	}
	if s.Min != nil {
		ss.Min = JSONFloat(*s.Min)
	}
	if s.Max != nil {
		ss.Max = JSONFloat(*s.Max)
	}
	return json.Marshal(ss)
}

// JSONFloat represents the non-finite values as strings, encoding/json rejects them.
func JSONFloat(f float64) interface{} {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

func (s Stats) String() string {
	min, max, ok := s.Range()
	if !ok {
		return fmt.Sprintf("{vals:%d zeros:%d nans:%d}", s.NumVals, s.NumZeros, s.NumNans)
	}
	return fmt.Sprintf("{vals:%d zeros:%d nans:%d min:%v max:%v}", s.NumVals, s.NumZeros, s.NumNans, min, max)
}

// Accumulator collects the summary statistics of a stream of numbers in a single pass.
type Accumulator struct {
	count int
	zeros int
	nans  int
	min   float64
	max   float64
}

// NewAccumulator creates a new empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		min: math.Inf(1),
		max: math.Inf(-1),
	}
}

// Push adds another value.
func (a *Accumulator) Push(v float64) {
	a.count++

	if v > a.max {
		a.max = v
	}

	if v < a.min {
		a.min = v
	}

	if v == 0 {
		a.zeros++
	}

	if v != v {
		a.nans++
	}
}

// Count returns the number of values pushed so far.
func (a *Accumulator) Count() int {
	return a.count
}

// Stats returns the statistics of the values pushed so far.
func (a *Accumulator) Stats() Stats {
	if a.count == 0 {
		return Stats{}
	}
	min, max := a.min, a.max
	// nothing moved the bounds away from their initial values
	if a.nans == a.count {
		min = math.NaN()
		max = math.NaN()
	}
	return Stats{
		NumVals:  a.count,
		NumZeros: a.zeros,
		NumNans:  a.nans,
		Min:      &min,
		Max:      &max,
	}
}

// ArrayStats returns the summary statistics for the given values.
// A nil slice is invalid input, an empty one gives empty statistics.
func ArrayStats(values []float64) (Stats, error) {
	if values == nil {
		return Stats{}, fmt.Errorf("array stats on nil values: %w", InvalidInputErr)
	}
	metrics.Observer.Compute(arrayStatsOp)

	acc := NewAccumulator()
	for _, v := range values {
		acc.Push(v)
	}
	stats := acc.Stats()
	observeDegenerate(arrayStatsOp, stats)

	log.Debug().
		Str("op", arrayStatsOp).
		Int("num_vals", stats.NumVals).
		Int("num_nans", stats.NumNans).
		Msg("computed stats")
	return stats, nil
}

func observeDegenerate(op string, stats Stats) {
	switch {
	case stats.NumVals == 0:
		metrics.Observer.Degenerate(op, emptyInput)
	case stats.NumNans == stats.NumVals:
		metrics.Observer.Degenerate(op, allNaNInput)
	}
}
