package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr            = ":8000"
	defaultRequestTimeout  = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Config represents the inference service configuration
type Config struct {
	Settings Settings     `yaml:"settings"`
	Server   ServerConfig `yaml:"server"`
	Model    ModelConfig  `yaml:"model"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel LogLevel `yaml:"logLevel"`
}

// LogLevel wraps slog.Level with YAML decoding from its text form.
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

// ServerConfig represents the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// ModelConfig points at the trained artifact to serve.
type ModelConfig struct {
	ArtifactPath string `yaml:"artifactPath"`
}

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	config := Config{
		Server: ServerConfig{
			Addr:            defaultAddr,
			RequestTimeout:  defaultRequestTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if config.Model.ArtifactPath == "" {
		return nil, errors.New("model artifact path is required")
	}
	return &config, nil
}
