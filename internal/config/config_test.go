package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewConfig verifies the default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Top lists everything", func(t *testing.T) {
		t.Parallel()
		if cfg.Top != 0 {
			t.Errorf("expected Top to be 0, got %d", cfg.Top)
		}
	})

	t.Run("default BatchSize is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})

	t.Run("default BufferSize is 64KiB", func(t *testing.T) {
		t.Parallel()
		if cfg.BufferSize != 64*1024 {
			t.Errorf("expected BufferSize to be 65536, got %d", cfg.BufferSize)
		}
	})

	t.Run("history is saved to the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("default output is text on stdout", func(t *testing.T) {
		t.Parallel()
		if cfg.JSONReport || cfg.MarkdownReport || cfg.ReportFile != "" {
			t.Errorf("unexpected output defaults: %+v", cfg)
		}
	})
}

// TestConfigValidate tests the Validate method, one rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Sources = []string{"access.log"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid config returns nil", modify: func(*Config) {}},
		{name: "stdin source", modify: func(c *Config) { c.Sources = []string{"-", "a.log"} }},
		{name: "no sources", modify: func(c *Config) { c.Sources = nil }, wantErr: ErrNoSource},
		{name: "stdin twice", modify: func(c *Config) { c.Sources = []string{"-", "-"} }, wantErr: ErrDuplicateStdin},
		{name: "negative top", modify: func(c *Config) { c.Top = -1 }, wantErr: ErrInvalidTop},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidBatchSize},
		{name: "zero buffer size", modify: func(c *Config) { c.BufferSize = 0 }, wantErr: ErrInvalidBufferSize},
		{
			name: "json and markdown",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigApplyFile tests merging the configuration file under the flags.
func TestConfigApplyFile(t *testing.T) {
	t.Parallel()

	top := 10
	batch := 2
	buffer := 4096
	sites := true
	history := false

	file := &File{
		Top:        &top,
		Format:     FormatMarkdown,
		Sites:      &sites,
		Batch:      &batch,
		BufferSize: &buffer,
		History:    &history,
		HistoryDir: "/var/lib/urltally",
	}

	t.Run("file fills unset flags", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(file, nil)

		if cfg.Top != 10 || cfg.BatchSize != 2 || cfg.BufferSize != 4096 {
			t.Errorf("unexpected numbers: %+v", cfg)
		}
		if !cfg.Sites || cfg.SaveToDB || !cfg.MarkdownReport || cfg.JSONReport {
			t.Errorf("unexpected switches: %+v", cfg)
		}
		if cfg.DBDir != "/var/lib/urltally" {
			t.Errorf("expected DBDir from file, got %q", cfg.DBDir)
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Top = 3
		cfg.JSONReport = true
		changed := func(name string) bool { return name == "top" || name == "json" }

		cfg.ApplyFile(file, changed)

		if cfg.Top != 3 {
			t.Errorf("expected flag value 3 to win, got %d", cfg.Top)
		}
		if cfg.MarkdownReport {
			t.Error("file format must not override an explicit format flag")
		}
		if cfg.BatchSize != 2 {
			t.Errorf("expected batch from file, got %d", cfg.BatchSize)
		}
	})

	t.Run("nil file is ignored", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil, nil)
		if cfg.Top != DefaultTop || cfg.BatchSize != DefaultBatchSize {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		return path
	}

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.urltally")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		path := write(t, `top: 25
format: json
sites: true
batch: 8
bufferSize: 1024
history: false
historyDir: /tmp/urltally
`)

		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Top == nil || *cfg.Top != 25 {
			t.Errorf("expected top 25, got %v", cfg.Top)
		}
		if cfg.Format != FormatJSON {
			t.Errorf("expected format json, got %q", cfg.Format)
		}
		if cfg.Sites == nil || !*cfg.Sites {
			t.Error("expected sites true")
		}
		if cfg.Batch == nil || *cfg.Batch != 8 {
			t.Errorf("expected batch 8, got %v", cfg.Batch)
		}
		if cfg.BufferSize == nil || *cfg.BufferSize != 1024 {
			t.Errorf("expected bufferSize 1024, got %v", cfg.BufferSize)
		}
		if cfg.History == nil || *cfg.History {
			t.Error("expected history false")
		}
		if cfg.HistoryDir != "/tmp/urltally" {
			t.Errorf("expected historyDir, got %q", cfg.HistoryDir)
		}
	})

	t.Run("unset keys stay nil", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile(write(t, "sites: false\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Top != nil || cfg.Batch != nil || cfg.History != nil {
			t.Errorf("expected unset keys to be nil, got %+v", cfg)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(write(t, `invalid: yaml: content: [}`))
		if err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(write(t, "format: csv\n"))
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("expected ErrInvalidFormat, got %v", err)
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("top: 1\n"), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("%s dir %q does not end in %q", name, dir, AppName)
		}
	}
}
