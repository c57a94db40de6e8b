package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	APIBind   string `toml:"api_bind"`
	APIToken  string `toml:"api_token"`
}

// Tools contains the external executables the pipeline stages shell out to.
type Tools struct {
	YtDlp           string `toml:"yt_dlp"`
	Python          string `toml:"python"`
	SeparatorScript string `toml:"separator_script"`
	FFmpeg          string `toml:"ffmpeg"`
	Uvx             string `toml:"uvx"`
}

// Lyrics contains configuration for lyric lookup and transcription fallback.
type Lyrics struct {
	LookupEnabled        bool   `toml:"lookup_enabled"`
	LookupBaseURL        string `toml:"lookup_base_url"`
	LookupTimeout        int    `toml:"lookup_timeout"`
	TranscriptionEnabled bool   `toml:"transcription_enabled"`
	WhisperModel         string `toml:"whisper_model"`
}

// Render contains configuration for karaoke video rendering.
type Render struct {
	SubtitleFontSize int     `toml:"subtitle_font_size"`
	LineSeconds      float64 `toml:"line_seconds"`
}

// Jobs contains configuration for pipeline execution.
type Jobs struct {
	MaxConcurrent int `toml:"max_concurrent"`
}

// Cleanup contains configuration for the retention sweep over work and output files.
type Cleanup struct {
	Enabled         bool `toml:"enabled"`
	RetentionHours  int  `toml:"retention_hours"`
	IntervalMinutes int  `toml:"interval_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for chorus.
//
// Configuration sections by subsystem:
//   - Paths: directories and API bind address
//   - Tools: external executables (yt-dlp, python, ffmpeg, uvx)
//   - Lyrics: online lookup and transcription fallback settings
//   - Render: karaoke video rendering settings
//   - Jobs: pipeline concurrency
//   - Cleanup: retention sweep over generated files
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Lyrics  Lyrics  `toml:"lyrics"`
	Render  Render  `toml:"render"`
	Jobs    Jobs    `toml:"jobs"`
	Cleanup Cleanup `toml:"cleanup"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chorus/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/chorus/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chorus.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
