package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeLyrics()
	c.normalizeRender()
	c.normalizeJobs()
	c.normalizeCleanup()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeTools() error {
	c.Tools.YtDlp = strings.TrimSpace(c.Tools.YtDlp)
	if c.Tools.YtDlp == "" {
		c.Tools.YtDlp = defaultYtDlp
	}
	c.Tools.Python = strings.TrimSpace(c.Tools.Python)
	if c.Tools.Python == "" {
		c.Tools.Python = defaultPython
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.Uvx = strings.TrimSpace(c.Tools.Uvx)
	if c.Tools.Uvx == "" {
		c.Tools.Uvx = defaultUvx
	}
	script := strings.TrimSpace(c.Tools.SeparatorScript)
	if script == "" {
		script = defaultSeparatorScript
	}
	expanded, err := expandPath(script)
	if err != nil {
		return fmt.Errorf("tools.separator_script: %w", err)
	}
	c.Tools.SeparatorScript = expanded
	return nil
}

func (c *Config) normalizeLyrics() {
	c.Lyrics.LookupBaseURL = strings.TrimRight(strings.TrimSpace(c.Lyrics.LookupBaseURL), "/")
	if c.Lyrics.LookupBaseURL == "" {
		c.Lyrics.LookupBaseURL = defaultLookupBaseURL
	}
	if c.Lyrics.LookupTimeout <= 0 {
		c.Lyrics.LookupTimeout = defaultLookupTimeout
	}
	c.Lyrics.WhisperModel = strings.TrimSpace(c.Lyrics.WhisperModel)
	if c.Lyrics.WhisperModel == "" {
		c.Lyrics.WhisperModel = defaultWhisperModel
	}
}

func (c *Config) normalizeRender() {
	if c.Render.SubtitleFontSize <= 0 {
		c.Render.SubtitleFontSize = defaultFontSize
	}
	if c.Render.LineSeconds <= 0 {
		c.Render.LineSeconds = defaultLineSeconds
	}
}

func (c *Config) normalizeJobs() {
	if c.Jobs.MaxConcurrent <= 0 {
		c.Jobs.MaxConcurrent = defaultMaxConcurrent
	}
}

func (c *Config) normalizeCleanup() {
	if c.Cleanup.RetentionHours <= 0 {
		c.Cleanup.RetentionHours = defaultRetentionHours
	}
	if c.Cleanup.IntervalMinutes <= 0 {
		c.Cleanup.IntervalMinutes = defaultSweepMinutes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
