// Package config loads and validates the YAML control file that selects
// the noise model, solver, and trajectory-signal options for an estimation
// run.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Valid value registries.
var (
	validNoiseModels = map[string]bool{"White": true, "Powerlaw": true}
	validSolvers     = map[string]bool{"AmmarGrag": true, "Fullcov": true, "Default": true, "": true}
)

// Control is the top-level control-file payload.
type Control struct {
	NoiseModels        []string `yaml:"noise_models"`
	MinimizationMethod string   `yaml:"minimization_method,omitempty"`
	SeasonalSignal     bool     `yaml:"seasonal_signal,omitempty"`
	HalfSeasonalSignal bool     `yaml:"half_seasonal_signal,omitempty"`
	EstimateOffsets    bool     `yaml:"estimate_offsets,omitempty"`
	PhysicalUnit       string   `yaml:"physical_unit,omitempty"`
	ScaleFactor        float64  `yaml:"scale_factor,omitempty"`
	Interpolate        bool     `yaml:"interpolate,omitempty"`
}

// Load reads and strictly parses a YAML control file: unrecognized keys
// (typos) are rejected.
func Load(path string) (*Control, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading control file: %w", err)
	}
	var c Control
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing control file: %w", err)
	}
	if c.ScaleFactor == 0 {
		c.ScaleFactor = 1.0
	}
	return &c, nil
}

// Validate checks that every field holds a recognized value.
func (c *Control) Validate() error {
	if len(c.NoiseModels) == 0 {
		return fmt.Errorf("noise_models: at least one noise model required")
	}
	for i, name := range c.NoiseModels {
		if !validNoiseModels[name] {
			return fmt.Errorf("noise_models[%d]: unknown model %q; valid: White, Powerlaw", i, name)
		}
	}
	if !validSolvers[c.MinimizationMethod] {
		return fmt.Errorf("minimization_method: unknown method %q; valid: AmmarGrag, Fullcov, Default, or empty", c.MinimizationMethod)
	}
	if c.ScaleFactor <= 0 {
		return fmt.Errorf("scale_factor must be positive, got %f", c.ScaleFactor)
	}
	return nil
}

// ApplyOverrides lets CLI flags override a subset of file-sourced fields,
// the way inference-sim's cobra flags override a loaded workload spec.
// A zero-value override (empty string, zero float) leaves the file value
// untouched.
func (c *Control) ApplyOverrides(minimizationMethod string, scaleFactor float64) {
	if minimizationMethod != "" {
		c.MinimizationMethod = minimizationMethod
	}
	if scaleFactor != 0 {
		c.ScaleFactor = scaleFactor
	}
}
