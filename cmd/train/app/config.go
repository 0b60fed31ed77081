package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/konkalaitzidis/digital-health-app/internal/window"
)

// Config represents the training command configuration
type Config struct {
	Settings Settings       `yaml:"settings"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Training TrainingConfig `yaml:"training"`
	Output   OutputConfig   `yaml:"output"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel LogLevel `yaml:"logLevel"`
}

// LogLevel wraps slog.Level with YAML decoding from its text form
// ("debug", "info", "warn", "error").
type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		l.Level = slog.LevelInfo
		return nil
	}
	return l.Level.UnmarshalText([]byte(s))
}

// DatasetConfig points at the labeled accelerometer recording to train on.
type DatasetConfig struct {
	Path string `yaml:"path"`
}

// PipelineConfig carries the windowing parameters. They are persisted into
// the artifact, so inference always reconstructs the same window geometry.
type PipelineConfig struct {
	FS      float64 `yaml:"fs"`
	WinSec  float64 `yaml:"winSec"`
	Overlap float64 `yaml:"overlap"`
}

// TrainingConfig controls the split and the classifier.
type TrainingConfig struct {
	TestFraction float64 `yaml:"testFraction"`
	Seed         int64   `yaml:"seed"`
	Neighbours   int     `yaml:"neighbours"`
}

// OutputConfig names where the run's products go. RunsDatabase and
// ReportImage are optional; FontFile is only required when ReportImage is set.
type OutputConfig struct {
	ArtifactPath string `yaml:"artifactPath"`
	RunsDatabase string `yaml:"runsDatabase"`
	ReportImage  string `yaml:"reportImage"`
	FontFile     string `yaml:"fontFile"`
}

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	config := Config{
		Pipeline: PipelineConfig{FS: 20, WinSec: 5, Overlap: 0.5},
		Training: TrainingConfig{TestFraction: 0.2, Seed: 42, Neighbours: 5},
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate fails fast on configuration that would only blow up mid-run.
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return errors.New("dataset path is required")
	}
	if c.Output.ArtifactPath == "" {
		return errors.New("artifact path is required")
	}
	if err := c.WindowParams().Validate(); err != nil {
		return fmt.Errorf("pipeline configuration: %w", err)
	}
	if c.Training.TestFraction <= 0 || c.Training.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be in (0, 1), got %g", c.Training.TestFraction)
	}
	if c.Training.Neighbours <= 0 {
		return fmt.Errorf("neighbour count must be positive, got %d", c.Training.Neighbours)
	}
	if c.Output.ReportImage != "" && c.Output.FontFile == "" {
		return errors.New("font file is required when a report image is configured")
	}
	return nil
}

// WindowParams returns the windowing configuration as pipeline parameters.
func (c *Config) WindowParams() window.Params {
	return window.Params{
		FS:      c.Pipeline.FS,
		WinSec:  c.Pipeline.WinSec,
		Overlap: c.Pipeline.Overlap,
	}
}
