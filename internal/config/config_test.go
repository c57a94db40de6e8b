package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chorus/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing file, got %s", path)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7981" {
		t.Fatalf("default api bind = %q", cfg.Paths.APIBind)
	}
	if cfg.Jobs.MaxConcurrent != 2 {
		t.Fatalf("default max concurrent = %d", cfg.Jobs.MaxConcurrent)
	}
	if !cfg.Lyrics.LookupEnabled || !cfg.Lyrics.TranscriptionEnabled {
		t.Fatalf("lyric sources should default on: %+v", cfg.Lyrics)
	}
}

func TestLoadCustomPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := t.TempDir()
	path := filepath.Join(dir, "chorus.toml")
	content := `
[paths]
work_dir = "~/work"
output_dir = "~/output"
api_bind = "0.0.0.0:9000"

[jobs]
max_concurrent = 4

[render]
subtitle_font_size = 32
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q, exists = %v", resolved, exists)
	}
	if cfg.Paths.WorkDir != filepath.Join(home, "work") {
		t.Fatalf("work dir not expanded: %q", cfg.Paths.WorkDir)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Fatalf("api bind = %q", cfg.Paths.APIBind)
	}
	if cfg.Jobs.MaxConcurrent != 4 {
		t.Fatalf("max concurrent = %d", cfg.Jobs.MaxConcurrent)
	}
	if cfg.Render.SubtitleFontSize != 32 {
		t.Fatalf("font size = %d", cfg.Render.SubtitleFontSize)
	}
	// Unset sections keep defaults.
	if cfg.Tools.FFmpeg == "" {
		t.Fatal("tools defaults should survive partial config")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	base := t.TempDir()

	build := func(mutate func(*config.Config)) *config.Config {
		cfg := config.Default()
		cfg.Paths.WorkDir = filepath.Join(base, "work")
		cfg.Paths.OutputDir = filepath.Join(base, "output")
		cfg.Paths.LogDir = filepath.Join(base, "logs")
		mutate(&cfg)
		return &cfg
	}

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"same work and output", func(c *config.Config) { c.Paths.OutputDir = c.Paths.WorkDir }, "output_dir"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "level"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "format"},
		{"zero font size", func(c *config.Config) { c.Render.SubtitleFontSize = -1 }, "subtitle_font_size"},
		{"zero concurrency", func(c *config.Config) { c.Jobs.MaxConcurrent = 0 }, "max_concurrent"},
	}
	for _, tc := range cases {
		cfg := build(tc.mutate)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, section := range []string{"[paths]", "[tools]", "[lyrics]", "[render]", "[jobs]", "[cleanup]", "[logging]"} {
		if !strings.Contains(string(data), section) {
			t.Fatalf("sample missing section %s", section)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "a", "work")
	cfg.Paths.OutputDir = filepath.Join(base, "b", "output")
	cfg.Paths.LogDir = filepath.Join(base, "c", "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s not created: %v", dir, err)
		}
	}
}
