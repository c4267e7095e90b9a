package commands

import (
	"encoding/json"
	"fmt"

	"github.com/drakos74/free-vis/internal/config"
	"github.com/drakos74/free-vis/internal/metrics"
	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/drakos74/free-vis/internal/vis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// Options are the settings shared by all commands.
type Options struct {
	ConfigPath  string
	LogLevel    string
	MetricsAddr string
	Output      string

	Config *config.Config
}

// NewRootCommand creates the free-vis command with all its sub commands.
func NewRootCommand() *cobra.Command {
	opts := new(Options)

	rootCmd := &cobra.Command{
		Use:   "free-vis",
		Short: "Summary statistics and confusion matrices for numeric data",
		Long: `free-vis computes descriptive statistics over numeric arrays and tensors
and shapes them for visualisation.

Commands:
  stats       summary statistics of an array of numbers
  confusion   confusion matrix of labels and predictions`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.setup,
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default .free-vis.yaml in the working or home directory)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel, "log level")
	rootCmd.PersistentFlags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on the given address")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "output format, table or json")

	rootCmd.AddCommand(NewStatsCommand(opts))
	rootCmd.AddCommand(NewConfusionCommand(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func (o *Options) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = o.MetricsAddr
	}
	if flags.Changed("output") {
		cfg.Output = o.Output
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server stopped")
			}
		}()
	}

	o.Config = cfg
	return nil
}

// dtype resolves the tensor precision from the flag or the config.
func (o *Options) dtype(cmd *cobra.Command, flag string) (tensor.DType, error) {
	if cmd.Flags().Changed(flag) {
		s, err := cmd.Flags().GetString(flag)
		if err != nil {
			return 0, err
		}
		return tensor.ParseDType(s)
	}
	return o.Config.DType(), nil
}

// write prints the payload as json or the tables as text.
func (o *Options) write(cmd *cobra.Command, payload interface{}, tables ...vis.Table) error {
	out := cmd.OutOrStdout()
	if o.Config.Output == config.OutputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	for _, t := range tables {
		if _, err := fmt.Fprintln(out, t.Render()); err != nil {
			return err
		}
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "free-vis %s\n", Version)
		},
	}
}
