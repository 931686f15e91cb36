// Package config provides configuration loading and management for the
// selection tool. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the tool configuration loaded from YAML
type Config struct {
	// Paint parameters control manual block selection
	Paint struct {
		// BlockSize is the default edge length of the selection stamp,
		// in voxels
		BlockSize int `yaml:"blockSize"`

		// Axes lists the axes (0, 1, 2) along which the stamp extends;
		// omitted axes collapse to a single-voxel-thick slab
		Axes []int `yaml:"axes"`
	} `yaml:"paint"`

	// Fill parameters control select-by-value flood fill
	Fill struct {
		// Precision is the intensity tolerance; zero requires exact
		// equality with the seed value
		Precision float64 `yaml:"precision"`

		// SearchRadius bounds the fill to an ellipsoid of these per-axis
		// radii, in voxels; all-zero searches the whole volume
		SearchRadius [3]float64 `yaml:"searchRadius"`

		// Local restricts the fill to voxels face-connected to the seed
		Local bool `yaml:"local"`
	} `yaml:"fill"`

	// Output parameters
	Output struct {
		// OverlayDir is the directory where overlay slices are saved;
		// empty disables overlay output
		OverlayDir string `yaml:"overlayDir"`

		// GzipMask compresses the saved mask image
		GzipMask bool `yaml:"gzipMask"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Paint.BlockSize = 3
	cfg.Paint.Axes = []int{0, 1, 2}

	cfg.Fill.Precision = 0
	cfg.Fill.SearchRadius = [3]float64{0, 0, 0}
	cfg.Fill.Local = true

	cfg.Output.OverlayDir = ""
	cfg.Output.GzipMask = true
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
