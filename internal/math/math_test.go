package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {

	type test struct {
		input  float64
		output string
	}

	tests := map[string]test{
		"0": {
			input:  0,
			output: "0.00",
		},
		"-1": {
			input:  -1,
			output: "-1.00",
		},
		"+1": {
			input:  1,
			output: "1.00",
		},
		"5": {
			input:  1.5555,
			output: "1.56",
		},
		"4": {
			input:  1.4444,
			output: "1.44",
		},
		"nan": {
			input:  math.NaN(),
			output: "NaN",
		},
		"+inf": {
			input:  math.Inf(1),
			output: "Infinity",
		},
		"-inf": {
			input:  math.Inf(-1),
			output: "-Infinity",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := Format(tt.input)
			assert.Equal(t, tt.output, s)
		})
	}

}

func TestConversions(t *testing.T) {
	assert.Equal(t, []float64{1, -2, 3}, ToFloat([]int{1, -2, 3}))
	assert.Nil(t, ToFloat(nil))
}
