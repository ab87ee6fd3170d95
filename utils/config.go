package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"certkit/bound"
	"certkit/datasets"
)

// AdaptorNames lists the bounding-algorithm adaptors a run may select.
var AdaptorNames = []string{"fastlip", "recurjac", "spectral", "fastlin"}

// RunConfig holds a certification run configuration.
type RunConfig struct {
	Dataset string  `yaml:"dataset"`
	Adaptor string  `yaml:"adaptor"`
	Norm    string  `yaml:"norm"`
	Radius  float64 `yaml:"radius"`
	Upper   float64 `yaml:"upper"`
	Eps     float64 `yaml:"eps"`
	Steps   int     `yaml:"steps"`
	Workers int     `yaml:"workers"`
	Weights string  `yaml:"weights"`
	Samples string  `yaml:"samples"`
}

// LoadConfig reads a YAML run configuration and fills in defaults.
func LoadConfig(filepath string) (*RunConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills zero-valued search parameters with the defaults
// baked into the adaptors.
func ApplyDefaults(cfg *RunConfig) {
	if cfg.Upper == 0 {
		cfg.Upper = 0.5
	}
	if cfg.Eps == 0 {
		cfg.Eps = 1e-4
	}
	if cfg.Steps == 0 {
		cfg.Steps = 15
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Norm == "" {
		cfg.Norm = "inf"
	}
}

// ValidateConfig validates a certification run configuration.
func ValidateConfig(cfg *RunConfig) error {
	if _, err := datasets.Get(cfg.Dataset); err != nil {
		return err
	}

	known := false
	for _, name := range AdaptorNames {
		if cfg.Adaptor == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown adaptor %q (want one of %v)", cfg.Adaptor, AdaptorNames)
	}

	if _, err := bound.ParseNorm(cfg.Norm); err != nil {
		return err
	}

	if cfg.Radius < 0 {
		return fmt.Errorf("radius must be nonnegative")
	}
	if cfg.Upper <= 0 {
		return fmt.Errorf("search upper bound must be positive")
	}
	if cfg.Eps <= 0 {
		return fmt.Errorf("search eps must be positive")
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	return nil
}
