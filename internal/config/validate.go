package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLyrics(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.WorkDir == c.Paths.OutputDir {
		return errors.New("paths.work_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateLyrics() error {
	if c.Lyrics.LookupEnabled && strings.TrimSpace(c.Lyrics.LookupBaseURL) == "" {
		return errors.New("lyrics.lookup_base_url must be set when lyrics.lookup_enabled is true")
	}
	if c.Lyrics.LookupTimeout <= 0 {
		return errors.New("lyrics.lookup_timeout must be positive")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.SubtitleFontSize <= 0 {
		return errors.New("render.subtitle_font_size must be positive")
	}
	if c.Render.LineSeconds <= 0 {
		return errors.New("render.line_seconds must be positive")
	}
	return nil
}

func (c *Config) validateJobs() error {
	if c.Jobs.MaxConcurrent <= 0 {
		return errors.New("jobs.max_concurrent must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
