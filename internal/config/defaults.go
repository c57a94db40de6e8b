package config

const (
	defaultWorkDir         = "~/.local/share/chorus/work"
	defaultOutputDir       = "~/.local/share/chorus/output"
	defaultLogDir          = "~/.local/share/chorus/logs"
	defaultAPIBind         = "127.0.0.1:7981"
	defaultYtDlp           = "yt-dlp"
	defaultPython          = "python3"
	defaultSeparatorScript = "~/.local/share/chorus/scripts/separate_audio.py"
	defaultFFmpeg          = "ffmpeg"
	defaultUvx             = "uvx"
	defaultLookupBaseURL   = "https://api.lyrics.ovh/v1"
	defaultLookupTimeout   = 10
	defaultWhisperModel    = "small"
	defaultFontSize        = 24
	defaultLineSeconds     = 3.0
	defaultMaxConcurrent   = 2
	defaultRetentionHours  = 24
	defaultSweepMinutes    = 60
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Tools: Tools{
			YtDlp:           defaultYtDlp,
			Python:          defaultPython,
			SeparatorScript: defaultSeparatorScript,
			FFmpeg:          defaultFFmpeg,
			Uvx:             defaultUvx,
		},
		Lyrics: Lyrics{
			LookupEnabled:        true,
			LookupBaseURL:        defaultLookupBaseURL,
			LookupTimeout:        defaultLookupTimeout,
			TranscriptionEnabled: true,
			WhisperModel:         defaultWhisperModel,
		},
		Render: Render{
			SubtitleFontSize: defaultFontSize,
			LineSeconds:      defaultLineSeconds,
		},
		Jobs: Jobs{
			MaxConcurrent: defaultMaxConcurrent,
		},
		Cleanup: Cleanup{
			Enabled:         true,
			RetentionHours:  defaultRetentionHours,
			IntervalMinutes: defaultSweepMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
