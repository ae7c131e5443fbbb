package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Document.DPI != 96 {
		t.Errorf("DPI = %v, want 96", cfg.Document.DPI)
	}
	if cfg.Document.DefaultUnit != "Points" {
		t.Errorf("DefaultUnit = %q, want Points", cfg.Document.DefaultUnit)
	}
	if cfg.Document.Text.DefaultFont != "Arial" {
		t.Errorf("DefaultFont = %q, want Arial", cfg.Document.Text.DefaultFont)
	}
	if cfg.Document.Text.MaxReduction != 0.25 {
		t.Errorf("MaxReduction = %v, want 0.25", cfg.Document.Text.MaxReduction)
	}
	if !strings.Contains(cfg.Document.Output.NameTemplate, "{{") {
		t.Errorf("output name template must not be expanded at load time, got %q", cfg.Document.Output.NameTemplate)
	}
	if cfg.Logging.ConsoleLogger.Level != "none" {
		t.Errorf("console level under test = %q, want none", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `version: 1
document:
  dpi: 72
  coordinates:
    stroke_padding: false
  text:
    default_font: Helvetica
    max_reduction: 0.5
logging:
  console:
    level: normal
  file:
    level: debug
    destination: ` + filepath.Join(tmpDir, "test.log") + `
    mode: append
reporting:
  destination: ` + filepath.Join(tmpDir, "report.zip") + `
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Document.DPI != 72 {
		t.Errorf("DPI = %v, want 72", cfg.Document.DPI)
	}
	if cfg.Document.Coordinates.StrokePadding {
		t.Error("Expected StrokePadding to be false")
	}
	if cfg.Document.Text.DefaultFont != "Helvetica" {
		t.Errorf("DefaultFont = %q, want Helvetica", cfg.Document.Text.DefaultFont)
	}
	// untouched values keep template defaults
	if cfg.Document.Coordinates.MaxPosition != 100000 {
		t.Errorf("MaxPosition = %v, want default 100000", cfg.Document.Coordinates.MaxPosition)
	}
	if !cfg.Document.Text.FontScaling {
		t.Error("Expected FontScaling default to survive overlay")
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ndocument:\n  dpi: 72\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"wrong version", "version: 2\n"},
		{"zero dpi", "version: 1\ndocument:\n  dpi: 0\n"},
		{"reduction out of range", "version: 1\ndocument:\n  text:\n    max_reduction: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := LoadConfiguration(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("prepared config is not valid: %v", err)
	}

	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"dpi: 96", "default_font: Arial", "max_reduction: 0.25"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("dump does not contain %q:\n%s", want, out)
		}
	}
}

func TestCleanFileName(t *testing.T) {
	if got := CleanFileName(""); got != "_bad_file_name_" {
		t.Errorf("CleanFileName(\"\") = %q", got)
	}
	got := CleanFileName("a" + string(os.PathSeparator) + "b")
	if strings.ContainsRune(got, os.PathSeparator) {
		t.Errorf("CleanFileName kept separator: %q", got)
	}
}
