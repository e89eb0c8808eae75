package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "epochs: 10\nlr: 0.01\nhidden: 256\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Epochs)
	assert.Equal(t, 0.01, cfg.LR)
	assert.Equal(t, 256, cfg.Hidden)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().BatchSize, cfg.BatchSize)
	assert.Equal(t, Default().Seed, cfg.Seed)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "epochs: 10\nlearning_rate: 0.01\n")

	_, err := LoadFile(path)
	assert.Error(t, err, "misspelled key must not be ignored")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero epochs", func(c *Config) { c.Epochs = 0 }},
		{"negative batch", func(c *Config) { c.BatchSize = -1 }},
		{"zero lr", func(c *Config) { c.LR = 0 }},
		{"momentum one", func(c *Config) { c.Momentum = 1 }},
		{"zero hidden", func(c *Config) { c.Hidden = 0 }},
		{"zero log_every", func(c *Config) { c.LogEvery = 0 }},
		{"empty data_dir", func(c *Config) { c.DataDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFileInvalidValues(t *testing.T) {
	path := writeConfig(t, "epochs: -3\n")
	_, err := LoadFile(path)
	assert.Error(t, err)
}
