package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".urltally"

// XDGConfigFile is the configuration file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .urltally configuration file.
// Pointer fields distinguish "not set" from a zero value.
type File struct {
	// Top is the default number of entries per report section.
	Top *int `yaml:"top,omitempty"`

	// Format is the default report format: text, json or markdown.
	Format string `yaml:"format,omitempty"`

	// Sites enables the registrable domain section by default.
	Sites *bool `yaml:"sites,omitempty"`

	// Batch is the default number of sources scanned concurrently.
	Batch *int `yaml:"batch,omitempty"`

	// BufferSize is the scanner read buffer size in bytes.
	BufferSize *int `yaml:"bufferSize,omitempty"`

	// History enables saving runs to the history database.
	History *bool `yaml:"history,omitempty"`

	// HistoryDir overrides the directory of the history database.
	HistoryDir string `yaml:"historyDir,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	switch cf.Format {
	case "", FormatText, FormatJSON, FormatMarkdown:
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidFormat)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .urltally in the current directory
// 3. Look for .urltally in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), XDGConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
