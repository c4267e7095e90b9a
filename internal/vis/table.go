package vis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/drakos74/free-vis/internal/concurrent"
	"github.com/drakos74/free-vis/internal/math"
	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table is the payload for tabular display.
type Table struct {
	Headers []string   `json:"headers"`
	Values  [][]string `json:"values"`
	Footer  []string   `json:"footer,omitempty"`
}

// NewTable creates an empty table with the given headers.
func NewTable(headers ...string) Table {
	return Table{
		Headers: headers,
		Values:  make([][]string, 0),
	}
}

// Append adds a row to the table.
func (t *Table) Append(row ...string) error {
	if len(row) != len(t.Headers) {
		return fmt.Errorf("%d values for %d columns: %w", len(row), len(t.Headers), tensor.ShapeErr)
	}
	t.Values = append(t.Values, row)
	return nil
}

// Render draws the table as text.
func (t Table) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(row(t.Headers))
	for _, values := range t.Values {
		tw.AppendRow(row(values))
	}
	if len(t.Footer) > 0 {
		tw.AppendFooter(row(t.Footer))
	}
	return tw.Render()
}

func row(values []string) table.Row {
	r := make(table.Row, len(values))
	for i, v := range values {
		r[i] = v
	}
	return r
}

// NamedTensor is a tensor with a display name.
type NamedTensor struct {
	Name   string
	Tensor tensor.Tensor
}

var statsHeaders = []string{
	"Tensor Name",
	"Shape",
	"Min",
	"Max",
	"# Zeros",
	"# NaNs",
}

// StatsTable summarises each tensor in a row. The statistics are computed concurrently.
func StatsTable(ctx context.Context, tensors ...NamedTensor) (Table, error) {
	promises := make([]*concurrent.Promise[math.Stats], len(tensors))
	for i, nt := range tensors {
		promises[i] = math.TensorStatsAsync(ctx, nt.Tensor)
	}

	t := NewTable(statsHeaders...)
	for i, p := range promises {
		stats, err := p.Await(ctx)
		if err != nil {
			return Table{}, fmt.Errorf("could not compute stats for '%s': %w", tensors[i].Name, err)
		}
		var shape tensor.Shape
		if tensors[i].Tensor != nil {
			shape = tensors[i].Tensor.Shape()
		}
		if err := t.Append(StatsRow(tensors[i].Name, shape, stats)...); err != nil {
			return Table{}, err
		}
	}
	return t, nil
}

// StatsRow formats the stats of a named value for the stats table.
func StatsRow(name string, shape tensor.Shape, stats math.Stats) []string {
	min, max := "", ""
	if lo, hi, ok := stats.Range(); ok {
		min = math.Format(lo)
		max = math.Format(hi)
	}
	return []string{
		name,
		FormatShape(shape),
		min,
		max,
		strconv.Itoa(stats.NumZeros),
		strconv.Itoa(stats.NumNans),
	}
}

// FormatShape prints the shape, with an unknown leading dimension shown as the batch.
func FormatShape(shape tensor.Shape) string {
	dd := make([]string, len(shape))
	for i, d := range shape {
		if i == 0 && d < 0 {
			dd[i] = "batch"
			continue
		}
		dd[i] = strconv.Itoa(d)
	}
	return fmt.Sprintf("[%s]", strings.Join(dd, ","))
}

// MatrixTable lays out a confusion matrix with the classes on both axes.
func MatrixTable(m math.Matrix, names ...string) (Table, error) {
	if len(names) == 0 {
		names = make([]string, m.Classes())
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
	}
	if len(names) != m.Classes() {
		return Table{}, fmt.Errorf("%d names for %d classes: %w", len(names), m.Classes(), tensor.ShapeErr)
	}

	t := NewTable(append([]string{"label \\ prediction"}, names...)...)
	for i, counts := range m {
		values := make([]string, 0, len(counts)+1)
		values = append(values, names[i])
		for _, c := range counts {
			values = append(values, strconv.Itoa(c))
		}
		if err := t.Append(values...); err != nil {
			return Table{}, err
		}
	}
	t.Footer = make([]string, len(t.Headers))
	t.Footer[0] = fmt.Sprintf("total %d", m.Total())
	return t, nil
}

// ReportTable lays out the per class metrics of a report.
func ReportTable(report math.Report) Table {
	t := NewTable("Class", "Precision", "Recall", "F1", "Support")
	support := 0
	for _, c := range report.Classes {
		t.Values = append(t.Values, []string{
			c.Class,
			math.Format(c.Precision),
			math.Format(c.Recall),
			math.Format(c.F1),
			strconv.Itoa(c.Support),
		})
		support += c.Support
	}
	t.Footer = []string{
		fmt.Sprintf("macro avg (accuracy %s)", math.Format(report.Accuracy)),
		math.Format(report.MacroPrecision),
		math.Format(report.MacroRecall),
		"",
		strconv.Itoa(support),
	}
	return t
}
