package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SourceDir != "docs" {
		t.Errorf("expected default source_dir %q, got %q", "docs", cfg.SourceDir)
	}
	if cfg.OutputDir != "build" {
		t.Errorf("expected default output_dir %q, got %q", "build", cfg.OutputDir)
	}
	if cfg.Annotations.MarkerDisplay != DisplayNumber {
		t.Errorf("expected default marker_display %q, got %q", DisplayNumber, cfg.Annotations.MarkerDisplay)
	}
	if !cfg.Annotations.OrdinalLists {
		t.Error("expected ordinal_lists enabled by default")
	}
	if cfg.Watch.DebounceMS != 100 {
		t.Errorf("expected default debounce_ms 100, got %d", cfg.Watch.DebounceMS)
	}
	if len(cfg.Annotations.Syntaxes) != 4 {
		t.Errorf("expected all 4 comment styles by default, got %v", cfg.Annotations.Syntaxes)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.codenotes.yml")

	original := DefaultConfig()
	original.SourceDir = "content"
	original.OutputDir = "public"
	original.Title = "Handbook"
	original.Exclude = []string{"drafts/**"}
	original.Annotations.MarkerDisplay = DisplaySource
	original.Annotations.Syntaxes = []string{"line", "sql"}
	original.Serve.Port = 9000

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.SourceDir != original.SourceDir {
		t.Errorf("source_dir: got %q, want %q", loaded.SourceDir, original.SourceDir)
	}
	if loaded.OutputDir != original.OutputDir {
		t.Errorf("output_dir: got %q, want %q", loaded.OutputDir, original.OutputDir)
	}
	if loaded.Title != original.Title {
		t.Errorf("title: got %q, want %q", loaded.Title, original.Title)
	}
	if loaded.Annotations.MarkerDisplay != DisplaySource {
		t.Errorf("marker_display: got %q, want %q", loaded.Annotations.MarkerDisplay, DisplaySource)
	}
	if loaded.Serve.Port != 9000 {
		t.Errorf("serve.port: got %d, want 9000", loaded.Serve.Port)
	}
	// A shorter list replaces the default rather than overlaying it.
	if len(loaded.Exclude) != 1 || loaded.Exclude[0] != "drafts/**" {
		t.Errorf("exclude: got %v, want [drafts/**]", loaded.Exclude)
	}
	if len(loaded.Annotations.Syntaxes) != 2 {
		t.Errorf("syntaxes: got %v, want [line sql]", loaded.Annotations.Syntaxes)
	}
	if len(DefaultExcludes) != 5 {
		t.Errorf("DefaultExcludes was modified: %v", DefaultExcludes)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.SourceDir != "docs" {
		t.Errorf("expected default source_dir, got %q", cfg.SourceDir)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yml")
	if err := os.WriteFile(path, []byte("annotations:\n  inline_fallback: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Annotations.InlineFallback {
		t.Error("inline_fallback should be set from file")
	}
	if cfg.Annotations.CodeSelector != "pre > code" {
		t.Errorf("code_selector default lost: %q", cfg.Annotations.CodeSelector)
	}
	if !cfg.Annotations.OrdinalLists {
		t.Error("ordinal_lists default lost")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("CODENOTES_OUTPUT_DIR", "site")
	t.Setenv("CODENOTES_SERVE__PORT", "9090")
	t.Setenv("CODENOTES_ANNOTATIONS__MARKER_DISPLAY", "source")
	t.Setenv("CODENOTES_ANNOTATIONS__SYNTAXES", "line,html")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.OutputDir != "site" {
		t.Errorf("env override failed: got %q, want %q", loaded.OutputDir, "site")
	}
	if loaded.Serve.Port != 9090 {
		t.Errorf("nested env override failed: got %d, want 9090", loaded.Serve.Port)
	}
	if loaded.Annotations.MarkerDisplay != DisplaySource {
		t.Errorf("nested env override failed: got %q", loaded.Annotations.MarkerDisplay)
	}
	if len(loaded.Annotations.Syntaxes) != 2 || loaded.Annotations.Syntaxes[1] != "html" {
		t.Errorf("list env override failed: got %v", loaded.Annotations.Syntaxes)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"CODENOTES_TITLE", "title"},
		{"CODENOTES_SOURCE_DIR", "source_dir"},
		{"CODENOTES_WATCH__DEBOUNCE_MS", "watch.debounce_ms"},
	}
	for _, tt := range tests {
		if got := envKey(tt.input); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty source dir", func(c *Config) { c.SourceDir = "" }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
		{"same dirs", func(c *Config) { c.OutputDir = "./docs" }},
		{"bad display", func(c *Config) { c.Annotations.MarkerDisplay = "emoji" }},
		{"bad syntax", func(c *Config) { c.Annotations.Syntaxes = []string{"line", "python"} }},
		{"bad selector", func(c *Config) { c.Annotations.CodeSelector = "pre >" }},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -1 }},
		{"port too large", func(c *Config) { c.Serve.Port = 70000 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"line", []string{"line"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}

func TestDetectSourceDir(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if got := detectSourceDir(); got != "docs" {
		t.Errorf("empty dir: got %q, want docs", got)
	}
	if err := os.MkdirAll("documentation", 0o755); err != nil {
		t.Fatal(err)
	}
	if got := detectSourceDir(); got != "documentation" {
		t.Errorf("got %q, want documentation", got)
	}
}
