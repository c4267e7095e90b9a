package math

import "errors"

var (
	InvalidInputErr = errors.New("invalid input")
	BoundsErr       = errors.New("index out of bounds")
)
