package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTop of 0 lists every domain and path.
	DefaultTop = 0

	// DefaultBatchSize is the number of sources scanned concurrently.
	// Scanning is CPU bound, so a handful of workers keeps every core busy
	// without holding many large inputs open.
	DefaultBatchSize = 4

	// DefaultBufferSize is the read buffer size of each scanner.
	DefaultBufferSize = 64 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "urltally"
)

// Report format names accepted in the configuration file.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config holds all configuration options of a scan.
// It is populated from CLI flags and passed down explicitly.
type Config struct {
	// Sources are the inputs to scan. "-" denotes standard input.
	Sources []string

	// Top is the number of entries per report section. 0 lists all.
	Top int

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of sources scanned concurrently.
	BatchSize int

	// BufferSize is the read buffer size of each scanner.
	BufferSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, .urltally is searched in the current directory and then in
	// the home directory.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path. Empty means standard output.
	// Parent directories are created when missing.
	ReportFile string

	// Sites adds a section ranking registrable domains (eTLD+1).
	Sites bool

	// DBDir is the directory of the run history database.
	// Defaults to the XDG data directory (~/.local/share/urltally on Linux).
	DBDir string

	// SaveToDB records the run in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Top:        DefaultTop,
		BatchSize:  DefaultBatchSize,
		BufferSize: DefaultBufferSize,
		DBDir:      XDGDataDir(),
		SaveToDB:   true,
	}
}

// XDGDataDir returns the XDG data directory for urltally.
// On Linux: ~/.local/share/urltally
// On macOS: ~/Library/Application Support/urltally
// On Windows: %LOCALAPPDATA%\urltally
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for urltally.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile fills the fields that flags left unset from the configuration
// file. changed reports whether the flag of the given name was set on the
// command line; explicit flags always win.
func (c *Config) ApplyFile(f *File, changed func(flag string) bool) {
	if f == nil {
		return
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if f.Top != nil && !changed("top") {
		c.Top = *f.Top
	}
	if f.Batch != nil && !changed("batch") {
		c.BatchSize = *f.Batch
	}
	if f.BufferSize != nil {
		c.BufferSize = *f.BufferSize
	}
	if f.Sites != nil && !changed("sites") {
		c.Sites = *f.Sites
	}
	if f.History != nil && !changed("no-history") {
		c.SaveToDB = *f.History
	}
	if f.HistoryDir != "" {
		c.DBDir = f.HistoryDir
	}

	if !changed("json") && !changed("markdown") {
		switch f.Format {
		case FormatJSON:
			c.JSONReport = true
		case FormatMarkdown:
			c.MarkdownReport = true
		}
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSource
	}

	stdin := 0
	for _, s := range c.Sources {
		if s == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return ErrDuplicateStdin
	}

	if c.Top < 0 {
		return ErrInvalidTop
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.BufferSize <= 0 {
		return ErrInvalidBufferSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
