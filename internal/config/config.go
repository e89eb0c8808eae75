// Package config holds the YAML training configuration.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config collects every knob of a training run.
type Config struct {
	Epochs     int     `yaml:"epochs"`
	BatchSize  int     `yaml:"batch_size"`
	LR         float64 `yaml:"lr"`
	Momentum   float64 `yaml:"momentum"`
	Hidden     int     `yaml:"hidden"`
	Seed       int64   `yaml:"seed"`
	DataDir    string  `yaml:"data_dir"`
	LogEvery   int     `yaml:"log_every"`
	Checkpoint string  `yaml:"checkpoint"`
}

// Default returns the configuration used when no file or flags override it.
func Default() Config {
	return Config{
		Epochs:    3,
		BatchSize: 64,
		LR:        0.1,
		Momentum:  0.0,
		Hidden:    128,
		Seed:      42,
		DataDir:   "data/mnist",
		LogEvery:  100,
	}
}

// LoadFile reads a YAML config from path on top of the defaults. Unknown
// keys are rejected so typos fail loudly instead of silently training with
// defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first nonsensical setting.
func (c Config) Validate() error {
	switch {
	case c.Epochs <= 0:
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	case c.BatchSize <= 0:
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	case c.LR <= 0:
		return fmt.Errorf("lr must be positive, got %g", c.LR)
	case c.Momentum < 0 || c.Momentum >= 1:
		return fmt.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	case c.Hidden <= 0:
		return fmt.Errorf("hidden must be positive, got %d", c.Hidden)
	case c.LogEvery <= 0:
		return fmt.Errorf("log_every must be positive, got %d", c.LogEvery)
	case c.DataDir == "":
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}
