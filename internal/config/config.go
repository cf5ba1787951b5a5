// Package config loads the gts.yaml run configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no explicit
// config path is given.
const DefaultFileName = "gts.yaml"

// Config drives one generation run. Command-line flags override the file.
type Config struct {
	// SourceRoot is the directory scanned for annotated structs.
	SourceRoot string `yaml:"source_root"`

	// OutputRoot, when set, replaces per-file relative output resolution:
	// every artifact lands under this directory.
	OutputRoot string `yaml:"output_root"`

	// Excludes are doublestar globs, relative to SourceRoot, of files
	// left out of the scan.
	Excludes []string `yaml:"excludes"`
}

// LoadFile loads and parses a YAML config file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// LoadDefault loads DefaultFileName if it exists, or returns a default
// config when it does not.
func LoadDefault() (*Config, error) {
	cfg, err := LoadFile(DefaultFileName)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = &Config{}
		applyDefaults(cfg)

		return cfg, nil
	}

	return cfg, err
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.SourceRoot == "" {
		cfg.SourceRoot = "."
	}
}
