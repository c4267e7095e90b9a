package tensor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDevice_Tensor(t *testing.T) {

	type test struct {
		values []float64
		shape  Shape
		dtype  DType
		data   []float64
		err    error
	}

	tests := map[string]test{
		"rank-1": {
			values: []float64{1, 2, 3},
			dtype:  Float64,
			data:   []float64{1, 2, 3},
		},
		"rank-2": {
			values: []float64{1, 2, 3, 4, 5, 6},
			shape:  Shape{2, 3},
			dtype:  Float64,
			data:   []float64{1, 2, 3, 4, 5, 6},
		},
		"float32-precision": {
			values: []float64{0.1},
			dtype:  Float32,
			data:   []float64{float64(float32(0.1))},
		},
		"int32-truncation": {
			values: []float64{1.7, -2.5, math.NaN(), 1e12},
			dtype:  Int32,
			data:   []float64{1, -2, 0, math.MaxInt32},
		},
		"empty": {
			values: []float64{},
			dtype:  Float32,
			data:   []float64{},
		},
		"size-mismatch": {
			values: []float64{1, 2, 3},
			shape:  Shape{2, 2},
			err:    ShapeErr,
		},
		"negative-dimension": {
			values: []float64{},
			shape:  Shape{-1, 0},
			err:    ShapeErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDevice(name)
			defer d.Close()

			tensor, err := d.Tensor(tt.values, tt.shape, tt.dtype)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				assert.Equal(t, 0, d.Live())
				return
			}
			require.NoError(t, err)
			defer tensor.Dispose()

			data, err := tensor.Data(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.data, []float64(data))
			assert.Equal(t, len(tt.values), Size(tensor))
			assert.Equal(t, tt.dtype, tensor.DType())
		})
	}
}

func TestDevice_Reductions(t *testing.T) {

	d := NewDevice("reductions")
	defer d.Close()

	type test struct {
		values []float64
		min    float64
		max    float64
		zeros  float64
	}

	tests := map[string]test{
		"mixed": {
			values: []float64{0, 0, 3, -1},
			min:    -1,
			max:    3,
			zeros:  2,
		},
		"negative-zero": {
			values: []float64{math.Copysign(0, -1), 2},
			min:    0,
			max:    2,
			zeros:  1,
		},
		"empty": {
			values: []float64{},
			min:    math.Inf(1),
			max:    math.Inf(-1),
			zeros:  0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tensor, err := d.Tensor1D(tt.values, Float64)
			require.NoError(t, err)
			defer tensor.Dispose()

			scope := NewScope()
			defer scope.Dispose()

			min, err := scope.Track(tensor.Min())
			require.NoError(t, err)
			max, err := scope.Track(tensor.Max())
			require.NoError(t, err)
			zeros, err := scope.Track(tensor.CountEqual(0))
			require.NoError(t, err)

			v, err := Scalar(ctx, min)
			require.NoError(t, err)
			assert.Equal(t, tt.min, v)

			v, err = Scalar(ctx, max)
			require.NoError(t, err)
			assert.Equal(t, tt.max, v)

			v, err = Scalar(ctx, zeros)
			require.NoError(t, err)
			assert.Equal(t, tt.zeros, v)
			assert.Equal(t, Int32, zeros.DType())
			assert.Equal(t, 0, zeros.Shape().Rank())
		})
	}

	assert.Equal(t, 0, d.Live())
}

func TestDevice_FromMatrix(t *testing.T) {
	d := NewDevice("matrix")
	defer d.Close()

	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	tensor, err := d.FromMatrix(m.T(), Float64)
	require.NoError(t, err)
	defer tensor.Dispose()

	assert.Equal(t, Shape{3, 2}, tensor.Shape())

	data, err := tensor.Data(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, []float64(data))
}

func TestDevice_Dispose(t *testing.T) {
	d := NewDevice("dispose")
	defer d.Close()

	tensor, err := d.Tensor1D([]float64{1, 2, 3}, Float32)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Live())
	assert.Equal(t, 12, d.Bytes())

	tensor.Dispose()
	tensor.Dispose()
	assert.Equal(t, 0, d.Live())
	assert.Equal(t, 0, d.Bytes())

	_, err = tensor.Data(context.Background())
	assert.True(t, errors.Is(err, DisposedErr))
	_, err = tensor.Min()
	assert.True(t, errors.Is(err, DisposedErr))
	_, err = tensor.CountEqual(0)
	assert.True(t, errors.Is(err, DisposedErr))
}

func TestDevice_Close(t *testing.T) {
	d := NewDevice("close")

	tensor, err := d.Tensor1D([]float64{1}, Float32)
	require.NoError(t, err)
	defer tensor.Dispose()

	d.Close()
	d.Close()

	_, err = tensor.Data(context.Background())
	assert.True(t, errors.Is(err, ClosedErr))

	_, err = d.Tensor1D([]float64{1}, Float32)
	assert.True(t, errors.Is(err, ClosedErr))
}

func TestDevice_DataCancelled(t *testing.T) {
	d := NewDevice("cancelled")
	defer d.Close()

	tensor, err := d.Tensor1D([]float64{1}, Float32)
	require.NoError(t, err)
	defer tensor.Dispose()

	// keep the stream busy so that the transfer cannot be queued
	release := make(chan struct{})
	require.NoError(t, d.submit(context.Background(), func() {
		<-release
	}))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = tensor.Data(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestShape(t *testing.T) {
	assert.Equal(t, 1, Shape{}.Size())
	assert.Equal(t, 0, Shape{}.Rank())
	assert.Equal(t, 6, Shape{2, 3}.Size())
	assert.Equal(t, 0, Shape{0, 3}.Size())
	assert.Equal(t, "[2,3]", Shape{2, 3}.String())
}

func TestParseDType(t *testing.T) {
	for _, dtype := range []DType{Float32, Int32, Float64} {
		parsed, err := ParseDType(dtype.String())
		require.NoError(t, err)
		assert.Equal(t, dtype, parsed)
	}
	_, err := ParseDType("bool")
	assert.Error(t, err)
}
