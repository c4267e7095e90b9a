package tensor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/google/uuid"
)

var (
	ShapeErr    = errors.New("invalid shape")
	DisposedErr = errors.New("tensor disposed")
	ClosedErr   = errors.New("device closed")
)

// DType is the precision the values of a tensor are stored at.
type DType int

const (
	Float32 DType = iota
	Int32
	Float64
)

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("dtype(%d)", int(d))
}

// ParseDType parses the name of a dtype.
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(s) {
	case "float32", "f32":
		return Float32, nil
	case "int32", "i32":
		return Int32, nil
	case "float64", "f64":
		return Float64, nil
	}
	return 0, fmt.Errorf("unknown dtype '%s'", s)
}

// Bytes is the size of a single element.
func (d DType) Bytes() int {
	if d == Float64 {
		return 8
	}
	return 4
}

// Shape is the size of each dimension of a tensor.
// A dimension of -1 stands for an unknown (batch) size.
type Shape []int

// Rank is the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Size is the number of elements for the shape.
// A scalar shape has size 1.
func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

func (s Shape) String() string {
	dd := make([]string, len(s))
	for i, d := range s {
		dd[i] = fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("[%s]", strings.Join(dd, ","))
}

func (s Shape) validate() error {
	for i, d := range s {
		if d < 0 {
			return fmt.Errorf("dimension %d of %v is negative: %w", i, s, ShapeErr)
		}
	}
	return nil
}

// Tensor is a handle on numeric data that might live on a device.
// Reductions run on the device and return scalar tensors the caller owns,
// values reach the host only through Data.
type Tensor interface {
	ID() uuid.UUID
	DType() DType
	Shape() Shape
	// Min is the minimum element. For an empty tensor it is +Inf.
	Min() (Tensor, error)
	// Max is the maximum element. For an empty tensor it is -Inf.
	Max() (Tensor, error)
	// CountEqual counts the elements equal to v.
	CountEqual(v float64) (Tensor, error)
	// Data transfers the values to the host.
	Data(ctx context.Context) (xmath.Vector, error)
	Dispose()
}

// Size is the number of elements of the tensor.
func Size(t Tensor) int {
	return t.Shape().Size()
}

// Scalar materializes a scalar tensor.
func Scalar(ctx context.Context, t Tensor) (float64, error) {
	v, err := t.Data(ctx)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("tensor %v is not a scalar: %w", t.Shape(), ShapeErr)
	}
	return v[0], nil
}
