// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"crosspair/internal/paths"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format         string   `yaml:"format"`
		Schema         string   `yaml:"schema"`
		NameProperties []string `yaml:"name_properties"`
		SplitSeparator string   `yaml:"split_separator"`
		MinNameLength  int      `yaml:"min_name_length"`
		PerEntityCap   int      `yaml:"per_entity_cap"`
		Seed           int64    `yaml:"seed"`
		Categories     []string `yaml:"categories"`
		Workers        int      `yaml:"workers"`
		Verbose        bool     `yaml:"verbose"`
		Debug          bool     `yaml:"debug"`
		NoColor        bool     `yaml:"no_color"`
	} `yaml:"defaults"`

	// Datasets restricts extraction to entities overlapping this list.
	// Empty means the built-in sanctions dataset allowlist.
	Datasets []string `yaml:"datasets"`

	// Profiles for different extraction scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents an extraction profile with specific settings
type Profile struct {
	Format         string   `yaml:"format"`
	Schema         string   `yaml:"schema"`
	NameProperties []string `yaml:"name_properties"`
	SplitSeparator string   `yaml:"split_separator"`
	MinNameLength  int      `yaml:"min_name_length"`
	PerEntityCap   int      `yaml:"per_entity_cap"`
	Seed           int64    `yaml:"seed"`
	Categories     []string `yaml:"categories"`
	Workers        int      `yaml:"workers"`
	Verbose        bool     `yaml:"verbose"`
	Debug          bool     `yaml:"debug"`
	NoColor        bool     `yaml:"no_color"`
	Datasets       []string `yaml:"datasets"`
	Description    string   `yaml:"description"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	// Default configuration
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	// Set default values
	config.Defaults.Format = "csv"
	config.Defaults.Schema = "Person"
	config.Defaults.NameProperties = []string{"name", "alias", "previousName", "weakAlias"}
	config.Defaults.SplitSeparator = " / "
	config.Defaults.MinNameLength = 2
	config.Defaults.PerEntityCap = 100
	config.Defaults.Seed = 42
	config.Defaults.Verbose = false
	config.Defaults.Debug = false
	config.Defaults.NoColor = false

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	// Read config file
	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Store default values before unmarshaling
	defaultProperties := config.Defaults.NameProperties
	defaultSeparator := config.Defaults.SplitSeparator
	defaultCap := config.Defaults.PerEntityCap
	defaultSeed := config.Defaults.Seed
	defaultMinLength := config.Defaults.MinNameLength

	// Parse YAML
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Restore defaults if not explicitly set in config file.
	// This handles the case where YAML unmarshaling zeroes fields
	// that are absent from the config file.
	if !containsField(data, "defaults", "name_properties") {
		config.Defaults.NameProperties = defaultProperties
	}
	if !containsField(data, "defaults", "split_separator") {
		config.Defaults.SplitSeparator = defaultSeparator
	}
	if !containsField(data, "defaults", "per_entity_cap") {
		config.Defaults.PerEntityCap = defaultCap
	}
	if !containsField(data, "defaults", "seed") {
		config.Defaults.Seed = defaultSeed
	}
	if !containsField(data, "defaults", "min_name_length") {
		config.Defaults.MinNameLength = defaultMinLength
	}

	// Validate the configuration
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	// Check current directory first - prioritize config.yaml
	if fileExists("config.yaml") {
		return "config.yaml"
	}
	if fileExists("crosspair.yaml") {
		return "crosspair.yaml"
	}
	if fileExists("crosspair.yml") {
		return "crosspair.yml"
	}

	// Check for .crosspair.yaml in current directory (project-specific config)
	if fileExists(".crosspair.yaml") {
		return ".crosspair.yaml"
	}
	if fileExists(".crosspair.yml") {
		return ".crosspair.yml"
	}

	// Check standard location
	standardConfig := paths.GetConfigFile()
	if fileExists(standardConfig) {
		return standardConfig
	}

	// Check XDG config directory
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgConfigFile := filepath.Join(xdgConfig, "crosspair", "config.yaml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns a list of available profile names
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			// Last key - check if it exists
			_, exists := current[key]
			return exists
		}
		// Intermediate key - navigate deeper
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if config.Defaults.PerEntityCap < 0 {
		return fmt.Errorf("per_entity_cap cannot be negative")
	}
	if config.Defaults.MinNameLength < 0 {
		return fmt.Errorf("min_name_length cannot be negative")
	}
	for name, profile := range config.Profiles {
		if profile.PerEntityCap < 0 {
			return fmt.Errorf("per_entity_cap cannot be negative in profile '%s'", name)
		}
	}

	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Callers should not crash on a missing or bad config file.
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = LoadConfig("")
	}
	return cfg
}
