package main

import (
	"log/slog"
	"strings"
	"time"

	"chorus/internal/config"
	"chorus/internal/deps"
	"chorus/internal/jobs"
	"chorus/internal/logging"
	"chorus/internal/pipeline"
	"chorus/internal/stages/demucs"
	"chorus/internal/stages/lyrics"
	"chorus/internal/stages/render"
	"chorus/internal/stages/ytdlp"
)

// buildLauncher assembles the stage collaborators from configuration and
// wires them into a bounded launcher.
func buildLauncher(cfg *config.Config, store *jobs.Store, logger *slog.Logger) *pipeline.Launcher {
	fetcher := ytdlp.NewService(cfg.Tools.YtDlp)
	separator := demucs.NewService(cfg.Tools.Python, cfg.Tools.SeparatorScript)

	var lookup *lyrics.LookupProvider
	if cfg.Lyrics.LookupEnabled {
		lookup = lyrics.NewLookupProvider(cfg.Lyrics.LookupBaseURL, time.Duration(cfg.Lyrics.LookupTimeout)*time.Second)
	}
	var transcriber *lyrics.Transcriber
	if cfg.Lyrics.TranscriptionEnabled {
		transcriber = lyrics.NewTranscriber(cfg.Tools.Uvx, cfg.Lyrics.WhisperModel)
	}
	acquirer := lyrics.NewService(lookup, transcriber, logger)

	renderer := render.NewService(cfg.Tools.FFmpeg, cfg.Paths.OutputDir, cfg.Render.SubtitleFontSize, cfg.Render.LineSeconds)

	executor := pipeline.NewExecutor(store, fetcher, separator, acquirer, renderer, cfg.Paths.WorkDir, logger)
	return pipeline.NewLauncher(executor, cfg.Jobs.MaxConcurrent, logger)
}

// reportDependencies logs the availability of the external tools at startup.
// Missing required tools are reported loudly but do not block the daemon;
// affected jobs will fail with a precise stage error instead.
func reportDependencies(cfg *config.Config, logger *slog.Logger) {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	for _, status := range statuses {
		if status.Available {
			continue
		}
		level := logger.Warn
		if status.Optional {
			level = logger.Info
		}
		level("external tool unavailable",
			logging.String("name", status.Name),
			logging.String("detail", status.Detail))
	}
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		logger.Warn("pipeline degraded until tools are installed",
			logging.String("missing", strings.Join(missing, ", ")))
	}
}
