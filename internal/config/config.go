package config

import (
	"errors"
	"fmt"

	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/rs/zerolog"
)

const (
	DefaultLogLevel    = "info"
	DefaultOutput      = OutputTable
	DefaultDeviceName  = "device-0"
	DefaultDeviceDType = "float32"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
)

var InvalidConfigErr = errors.New("invalid config")

// Config is the configuration of the command line tool.
type Config struct {
	LogLevel    string       `mapstructure:"log_level"`
	MetricsAddr string       `mapstructure:"metrics_addr"`
	Output      string       `mapstructure:"output"`
	Device      DeviceConfig `mapstructure:"device"`
}

// DeviceConfig configures the tensor device.
type DeviceConfig struct {
	Name  string `mapstructure:"name"`
	DType string `mapstructure:"dtype"`
}

// Validate checks the values of the config.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level '%s': %w", c.LogLevel, InvalidConfigErr)
	}
	if c.Output != OutputTable && c.Output != OutputJSON {
		return fmt.Errorf("output '%s' must be '%s' or '%s': %w", c.Output, OutputTable, OutputJSON, InvalidConfigErr)
	}
	if c.Device.Name == "" {
		return fmt.Errorf("empty device name: %w", InvalidConfigErr)
	}
	if _, err := tensor.ParseDType(c.Device.DType); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), InvalidConfigErr)
	}
	return nil
}

// Level returns the zerolog level of the config.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// DType returns the precision of the device tensors.
func (c *Config) DType() tensor.DType {
	dtype, err := tensor.ParseDType(c.Device.DType)
	if err != nil {
		return tensor.Float32
	}
	return dtype
}
