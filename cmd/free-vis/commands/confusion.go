package commands

import (
	"context"
	"fmt"

	"github.com/drakos74/free-vis/internal/config"
	"github.com/drakos74/free-vis/internal/math"
	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/drakos74/free-vis/internal/vis"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type confusionOptions struct {
	*Options
	device  bool
	colors  string
	summary bool
}

// NewConfusionCommand creates the confusion command.
func NewConfusionCommand(opts *Options) *cobra.Command {
	co := &confusionOptions{Options: opts}
	cmd := &cobra.Command{
		Use:   "confusion [file]",
		Short: "Confusion matrix of labels and predictions",
		Long: `Reads a json object from the file, or stdin, and prints the confusion
matrix with the precision and recall of each class.

  {"labels": [0, 1, 1], "predictions": [0, 1, 0], "classes": 2, "names": ["cat", "dog"]}

Without classes the number of classes is inferred from the largest index.`,
		Args: cobra.MaximumNArgs(1),
		RunE: co.run,
	}
	cmd.Flags().BoolVar(&co.device, "device", false, "compute the matrix on a tensor device")
	cmd.Flags().BoolVar(&co.summary, "summary", false, "append the text summary of the evaluation")
	cmd.Flags().StringVar(&co.colors, "colors", string(vis.Viridis), "colour map of the json heatmap, viridis, blues or greyscale")
	return cmd
}

func (co *confusionOptions) run(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	input, err := parseConfusion(data)
	if err != nil {
		return err
	}

	var m math.Matrix
	if co.device {
		m, err = co.deviceConfusion(cmd.Context(), input)
	} else {
		m, err = math.Confusion(input.Labels, input.Predictions, input.Classes)
	}
	if err != nil {
		return err
	}
	log.Debug().Int("classes", m.Classes()).Int("total", m.Total()).Msg("computed confusion matrix")

	report, err := m.Report(input.Names...)
	if err != nil {
		return err
	}
	mt, err := vis.MatrixTable(m, input.Names...)
	if err != nil {
		return err
	}
	hd, err := vis.ConfusionHeatmap(m, input.Names...)
	if err != nil {
		return err
	}
	heatmap, err := vis.Heatmap(hd, vis.HeatmapOptions{
		XLabel:   "label",
		YLabel:   "prediction",
		ColorMap: vis.ColorMap(co.colors),
	})
	if err != nil {
		return err
	}

	out := confusionOutput{
		Matrix:  m,
		Report:  report,
		Heatmap: heatmap,
	}
	if co.summary {
		out.Summary, err = m.Summary(input.Names...)
		if err != nil {
			return err
		}
	}
	if err := co.write(cmd, out, mt, vis.ReportTable(report)); err != nil {
		return err
	}
	if co.summary && co.Config.Output == config.OutputTable {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Summary)
	}
	return err
}

func (co *confusionOptions) deviceConfusion(ctx context.Context, input confusionInput) (math.Matrix, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if input.Labels == nil || input.Predictions == nil {
		return math.Confusion(input.Labels, input.Predictions, input.Classes)
	}
	d := tensor.NewDevice(co.Config.Device.Name)
	defer d.Close()

	scope := tensor.NewScope()
	defer scope.Dispose()

	labels, err := scope.Track(d.Tensor1D(math.ToFloat(input.Labels), tensor.Int32))
	if err != nil {
		return nil, err
	}
	predictions, err := scope.Track(d.Tensor1D(math.ToFloat(input.Predictions), tensor.Int32))
	if err != nil {
		return nil, err
	}
	return math.TensorConfusionAsync(ctx, labels, predictions, input.Classes).Await(ctx)
}

type confusionOutput struct {
	Matrix  math.Matrix     `json:"matrix"`
	Report  math.Report     `json:"report"`
	Heatmap vis.HeatmapSpec `json:"heatmap"`
	Summary string          `json:"summary,omitempty"`
}
