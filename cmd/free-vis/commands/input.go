package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/drakos74/free-vis/internal/math"
	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/spf13/cobra"
)

// readInput reads the file given as argument, or stdin without one.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("could not read input: %w", err)
	}
	return data, nil
}

// numbers is a json array of numbers where the non-finite values are given as strings.
type numbers []float64

func (n *numbers) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("expected an array of numbers: %w", math.InvalidInputErr)
	}
	var raw []interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("expected an array of numbers: %w", math.InvalidInputErr)
	}
	values := make([]float64, len(raw))
	for i, r := range raw {
		var err error
		switch v := r.(type) {
		case json.Number:
			values[i], err = v.Float64()
		case string:
			values[i], err = strconv.ParseFloat(v, 64)
		default:
			err = fmt.Errorf("unexpected %T", r)
		}
		if err != nil {
			return fmt.Errorf("value %d: %v: %w", i, err, math.InvalidInputErr)
		}
	}
	*n = values
	return nil
}

// parseValues reads an array of numbers, or an array of rows of numbers,
// and returns the values in row order together with their shape.
func parseValues(data []byte) ([]float64, tensor.Shape, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, nil, fmt.Errorf("expected an array of numbers: %w", math.InvalidInputErr)
	}
	if len(raw) == 0 || !bytes.HasPrefix(bytes.TrimSpace(raw[0]), []byte("[")) {
		var values numbers
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, nil, err
		}
		return values, tensor.Shape{len(values)}, nil
	}

	var values []float64
	cols := -1
	for i, r := range raw {
		var row numbers
		if err := json.Unmarshal(r, &row); err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		if cols >= 0 && len(row) != cols {
			return nil, nil, fmt.Errorf("row %d has %d values instead of %d: %w", i, len(row), cols, tensor.ShapeErr)
		}
		cols = len(row)
		values = append(values, row...)
	}
	if values == nil {
		values = []float64{}
	}
	return values, tensor.Shape{len(raw), cols}, nil
}

// confusionInput is the json input of the confusion command.
type confusionInput struct {
	Labels      []int    `json:"labels"`
	Predictions []int    `json:"predictions"`
	Classes     int      `json:"classes"`
	Names       []string `json:"names"`
}

func parseConfusion(data []byte) (confusionInput, error) {
	var input confusionInput
	if err := json.Unmarshal(data, &input); err != nil {
		return confusionInput{}, fmt.Errorf("could not parse confusion input: %v: %w", err, math.InvalidInputErr)
	}
	return input, nil
}
