// Package config loads evaluation specs from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Engine type names accepted by eval specs.
const (
	EngineAzure   = "azure"
	EngineCopilot = "copilot"
	EngineMock    = "mock"
)

// EvalSpec is a complete evaluation specification.
type EvalSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Run         Run    `yaml:"run"`
	Corpus      Corpus `yaml:"corpus"`
}

// Run controls execution behavior.
type Run struct {
	EngineType    string  `yaml:"engine"`
	ModelID       string  `yaml:"model"`
	Samples       int     `yaml:"samples,omitempty"`
	Workers       int     `yaml:"max_workers,omitempty"`
	TimeoutSec    int     `yaml:"timeout_seconds"`
	PassThreshold float64 `yaml:"pass_threshold,omitempty"`
	CacheDir      string  `yaml:"cache_dir,omitempty"`
}

// Corpus names the datasets an evaluation runs over.
type Corpus struct {
	Training   string `yaml:"training"`
	Validation string `yaml:"validation,omitempty"`
}

// Load reads and validates a spec from a YAML file.
func Load(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spec %s: %w", path, err)
	}

	return &spec, nil
}

// Validate checks that the spec is runnable.
func (s *EvalSpec) Validate() error {
	switch s.Run.EngineType {
	case EngineAzure, EngineCopilot, EngineMock:
	case "":
		return fmt.Errorf("engine is required")
	default:
		return fmt.Errorf("unknown engine %q", s.Run.EngineType)
	}

	if s.Run.ModelID == "" && s.Run.EngineType != EngineMock {
		return fmt.Errorf("model is required for engine %q", s.Run.EngineType)
	}
	if s.Run.TimeoutSec < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", s.Run.TimeoutSec)
	}
	if s.Run.Samples < 0 {
		return fmt.Errorf("samples must not be negative, got %d", s.Run.Samples)
	}
	if s.Run.Workers < 0 {
		return fmt.Errorf("max_workers must not be negative, got %d", s.Run.Workers)
	}
	if s.Run.PassThreshold < 0 || s.Run.PassThreshold > 1 {
		return fmt.Errorf("pass_threshold must be in [0, 1], got %g", s.Run.PassThreshold)
	}
	if s.Corpus.Training == "" {
		return fmt.Errorf("corpus.training is required")
	}

	return nil
}

// Timeout returns the per-request timeout as a duration.
func (s *EvalSpec) Timeout() time.Duration {
	return time.Duration(s.Run.TimeoutSec) * time.Second
}
