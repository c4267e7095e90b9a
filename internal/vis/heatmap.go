package vis

import (
	"fmt"
	"strconv"

	"github.com/drakos74/free-vis/internal/math"
	"github.com/drakos74/free-vis/internal/tensor"
)

// ColorMap is the colour scale of a heatmap.
type ColorMap string

const (
	Viridis   ColorMap = "viridis"
	Blues     ColorMap = "blues"
	Greyscale ColorMap = "greyscale"
)

const defaultFontSize = 12

// HeatmapData is a matrix of values with optional labels for its rows (x) and columns (y).
type HeatmapData struct {
	Values  [][]float64
	XLabels []string
	YLabels []string
}

// HeatmapOptions configures the heatmap payload.
// Zero values fall back to the defaults.
type HeatmapOptions struct {
	Width    int
	Height   int
	XLabel   string
	YLabel   string
	ColorMap ColorMap
	// Domain fixes the [min, max] of the colour scale.
	Domain   []float64
	FontSize int
}

// MatrixEntry is a single cell of the heatmap.
type MatrixEntry struct {
	X     string  `json:"x"`
	Y     string  `json:"y"`
	Count float64 `json:"count"`
}

// HeatmapSpec is the flattened heatmap ready for a renderer.
type HeatmapSpec struct {
	Entries  []MatrixEntry `json:"values"`
	XDomain  []string      `json:"xDomain,omitempty"`
	YDomain  []string      `json:"yDomain,omitempty"`
	XTitle   string        `json:"xTitle,omitempty"`
	YTitle   string        `json:"yTitle,omitempty"`
	Scheme   string        `json:"scheme,omitempty"`
	Range    []string      `json:"range,omitempty"`
	Domain   []float64     `json:"domain,omitempty"`
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	FontSize int           `json:"fontSize"`
}

// Heatmap flattens the matrix into one entry per cell.
// Labels keep the order of the axes when given.
func Heatmap(data HeatmapData, opts HeatmapOptions) (HeatmapSpec, error) {
	if data.XLabels != nil && len(data.XLabels) != len(data.Values) {
		return HeatmapSpec{}, fmt.Errorf("%d x labels for %d rows: %w", len(data.XLabels), len(data.Values), tensor.ShapeErr)
	}
	if len(opts.Domain) != 0 && len(opts.Domain) != 2 {
		return HeatmapSpec{}, fmt.Errorf("domain needs a min and a max, got %v: %w", opts.Domain, math.InvalidInputErr)
	}

	entries := make([]MatrixEntry, 0)
	for i, row := range data.Values {
		if data.YLabels != nil && len(data.YLabels) != len(row) {
			return HeatmapSpec{}, fmt.Errorf("%d y labels for %d columns in row %d: %w", len(data.YLabels), len(row), i, tensor.ShapeErr)
		}
		for j, count := range row {
			x := strconv.Itoa(i)
			if data.XLabels != nil {
				x = data.XLabels[i]
			}
			y := strconv.Itoa(j)
			if data.YLabels != nil {
				y = data.YLabels[j]
			}
			entries = append(entries, MatrixEntry{
				X:     x,
				Y:     y,
				Count: count,
			})
		}
	}

	spec := HeatmapSpec{
		Entries:  entries,
		XDomain:  data.XLabels,
		YDomain:  data.YLabels,
		XTitle:   opts.XLabel,
		YTitle:   opts.YLabel,
		Domain:   opts.Domain,
		Width:    opts.Width,
		Height:   opts.Height,
		FontSize: opts.FontSize,
	}
	if spec.FontSize == 0 {
		spec.FontSize = defaultFontSize
	}

	switch opts.ColorMap {
	case Blues:
		spec.Range = []string{"#f7fbff", "#4292c6"}
	case Greyscale:
		spec.Range = []string{"#000000", "#ffffff"}
	default:
		spec.Scheme = string(Viridis)
	}
	return spec, nil
}

// ConfusionHeatmap creates the heatmap data for a confusion matrix.
func ConfusionHeatmap(m math.Matrix, names ...string) (HeatmapData, error) {
	if len(names) != 0 && len(names) != m.Classes() {
		return HeatmapData{}, fmt.Errorf("%d names for %d classes: %w", len(names), m.Classes(), tensor.ShapeErr)
	}
	values := make([][]float64, len(m))
	for i, row := range m {
		values[i] = math.ToFloat(row)
	}
	data := HeatmapData{
		Values: values,
	}
	if len(names) != 0 {
		data.XLabels = names
		data.YLabels = names
	}
	return data, nil
}
