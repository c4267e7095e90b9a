package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, OutputTable, cfg.Output)
	assert.Equal(t, DefaultDeviceName, cfg.Device.Name)
	assert.Equal(t, tensor.Float32, cfg.DType())
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
output: json
metrics_addr: ":6021"
device:
  name: gpu
  dtype: float64
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, ":6021", cfg.MetricsAddr)
	assert.Equal(t, "gpu", cfg.Device.Name)
	assert.Equal(t, tensor.Float64, cfg.DType())
}

func TestLoad_Env(t *testing.T) {
	path := writeConfig(t, "output: json\n")
	t.Setenv("FREEVIS_OUTPUT", "table")
	t.Setenv("FREEVIS_DEVICE_DTYPE", "int32")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, OutputTable, cfg.Output)
	assert.Equal(t, tensor.Int32, cfg.DType())
}

func TestLoad_Invalid(t *testing.T) {

	type test struct {
		content string
	}

	tests := map[string]test{
		"output": {
			content: "output: html\n",
		},
		"log-level": {
			content: "log_level: loud\n",
		},
		"dtype": {
			content: "device:\n  dtype: bool\n",
		},
		"device-name": {
			content: "device:\n  name: \"\"\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.True(t, errors.Is(err, InvalidConfigErr), "unexpected error: %v", err)
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
