// Package config provides CLI configuration management for the canonize
// command-line tool. It supports loading configuration from YAML files,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/canonize/pkg/canonical"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultDBPath       = "canonize.db"
	DefaultSourceDir    = "data/source"
	DefaultExtractedDir = "data/extracted"
	DefaultOutputDir    = "data/views"
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".canonize"
	DefaultConfigFile   = "config.yaml"
)

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// DBPath is the SQLite database file the pipeline operates on.
	DBPath string `yaml:"db_path"`

	// SourceDir holds the reference data files: episodes.json and
	// locations.json.
	SourceDir string `yaml:"source_dir"`

	// ExtractedDir holds the staged mention files: people.jsonl and
	// theories.jsonl.
	ExtractedDir string `yaml:"extracted_dir"`

	// OutputDir receives the exported view files.
	OutputDir string `yaml:"output_dir"`

	// OverridesPath optionally names a YAML file of manual alias
	// bindings, merged over the built-in defaults.
	OverridesPath string `yaml:"overrides_path,omitempty"`

	// Threshold is the similarity score at or above which two person
	// labels merge into one canonical entity.
	Threshold float64 `yaml:"threshold"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		DBPath:       DefaultDBPath,
		SourceDir:    DefaultSourceDir,
		ExtractedDir: DefaultExtractedDir,
		OutputDir:    DefaultOutputDir,
		Threshold:    canonical.DefaultThreshold,
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $CANONIZE_CONFIG_DIR if set, otherwise ~/.canonize
func ConfigDir() (string, error) {
	if dir := os.Getenv("CANONIZE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.canonize/config.yaml or $CANONIZE_CONFIG_DIR/config.yaml)
// 3. Environment variables (CANONIZE_DB_PATH, CANONIZE_THRESHOLD, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	// Try to load from config file.
	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Overlay environment variables.
	loadFromEnv(cfg)

	// Validate the configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fileCfg CLIConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.DBPath != "" {
		cfg.DBPath = fileCfg.DBPath
	}
	if fileCfg.SourceDir != "" {
		cfg.SourceDir = fileCfg.SourceDir
	}
	if fileCfg.ExtractedDir != "" {
		cfg.ExtractedDir = fileCfg.ExtractedDir
	}
	if fileCfg.OutputDir != "" {
		cfg.OutputDir = fileCfg.OutputDir
	}
	if fileCfg.OverridesPath != "" {
		cfg.OverridesPath = fileCfg.OverridesPath
	}
	if fileCfg.Threshold > 0 {
		cfg.Threshold = fileCfg.Threshold
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	cfg.Debug = fileCfg.Debug

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("CANONIZE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("CANONIZE_SOURCE_DIR"); v != "" {
		cfg.SourceDir = v
	}

	if v := os.Getenv("CANONIZE_EXTRACTED_DIR"); v != "" {
		cfg.ExtractedDir = v
	}

	if v := os.Getenv("CANONIZE_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	if v := os.Getenv("CANONIZE_OVERRIDES"); v != "" {
		cfg.OverridesPath = v
	}

	if v := os.Getenv("CANONIZE_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Threshold = threshold
		}
	}

	if v := os.Getenv("CANONIZE_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("CANONIZE_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %g", c.Threshold)
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	// Ensure config directory exists.
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
