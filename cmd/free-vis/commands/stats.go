package commands

import (
	"context"

	"github.com/drakos74/free-vis/internal/concurrent"
	"github.com/drakos74/free-vis/internal/config"
	"github.com/drakos74/free-vis/internal/math"
	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/drakos74/free-vis/internal/vis"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

type statsOptions struct {
	*Options
	device bool
	name   string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *Options) *cobra.Command {
	so := &statsOptions{Options: opts}
	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Summary statistics of a json array of numbers",
		Long: `Reads a json array of numbers, or an array of equally long rows of numbers,
from the file, or stdin, and prints the minimum, maximum, number of zeros
and number of NaNs.

Non-finite values are given as the strings "NaN", "Inf" and "-Inf".`,
		Args: cobra.MaximumNArgs(1),
		RunE: so.run,
	}
	cmd.Flags().BoolVar(&so.device, "device", false, "compute the statistics on a tensor device")
	cmd.Flags().String("dtype", config.DefaultDeviceDType, "tensor precision on the device, float32, float64 or int32")
	cmd.Flags().StringVar(&so.name, "name", "input", "name of the values in the output")
	return cmd
}

func (so *statsOptions) run(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	values, shape, err := parseValues(data)
	if err != nil {
		return err
	}

	var out statsOutput
	if so.device {
		dtype, err := so.dtype(cmd, "dtype")
		if err != nil {
			return err
		}
		out, err = so.deviceStats(cmd.Context(), values, shape, dtype)
		if err != nil {
			return err
		}
	} else {
		stats, err := math.ArrayStats(values)
		if err != nil {
			return err
		}
		out = statsOutput{
			Name:  so.name,
			Shape: shape,
			Stats: stats,
		}
	}
	log.Debug().Str("name", so.name).Str("stats", out.Stats.String()).Msg("computed stats")

	t := vis.NewTable("Name", "Shape", "Min", "Max", "# Zeros", "# NaNs")
	if err := t.Append(vis.StatsRow(out.Name, out.Shape, out.Stats)...); err != nil {
		return err
	}
	return so.write(cmd, out, t)
}

func (so *statsOptions) deviceStats(ctx context.Context, values []float64, shape tensor.Shape, dtype tensor.DType) (statsOutput, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	d := tensor.NewDevice(so.Config.Device.Name)
	defer d.Close()

	t, err := so.upload(d, values, shape, dtype)
	if err != nil {
		return statsOutput{}, err
	}
	defer t.Dispose()
	log.Debug().
		Str("device", d.Name()).
		Str("dtype", dtype.String()).
		Int("bytes", d.Bytes()).
		Msg("uploaded values")

	return concurrent.Then(ctx, math.TensorStatsAsync(ctx, t), func(stats math.Stats) (statsOutput, error) {
		return statsOutput{
			Name:  so.name,
			Shape: t.Shape(),
			Stats: stats,
		}, nil
	}).Await(ctx)
}

// upload creates the tensor, rows of values go through a gonum matrix.
func (so *statsOptions) upload(d *tensor.Device, values []float64, shape tensor.Shape, dtype tensor.DType) (tensor.Tensor, error) {
	if shape.Rank() == 2 && shape.Size() > 0 {
		return d.FromMatrix(mat.NewDense(shape[0], shape[1], values), dtype)
	}
	return d.Tensor(values, shape, dtype)
}

type statsOutput struct {
	Name  string       `json:"name"`
	Shape tensor.Shape `json:"shape"`
	Stats math.Stats   `json:"stats"`
}
