// Package cleanup prunes aged job scratch directories and rendered outputs
// on a fixed interval.
package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"chorus/internal/config"
	"chorus/internal/logging"
)

// Sweeper removes files older than the configured retention window.
type Sweeper struct {
	workDir   string
	outputDir string
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger

	now func() time.Time
}

// New builds a sweeper from cleanup configuration.
func New(cfg *config.Config, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		workDir:   cfg.Paths.WorkDir,
		outputDir: cfg.Paths.OutputDir,
		retention: time.Duration(cfg.Cleanup.RetentionHours) * time.Hour,
		interval:  time.Duration(cfg.Cleanup.IntervalMinutes) * time.Minute,
		logger:    logging.NewComponentLogger(logger, "cleanup"),
		now:       time.Now,
	}
}

// Run sweeps once immediately and then on every interval tick until ctx is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	removed := s.SweepOnce()
	if removed > 0 {
		s.logger.Info("cleanup sweep finished", logging.Int("removed", removed))
	}
}

// SweepOnce removes expired entries and reports how many were deleted. Job
// scratch directories are removed whole; rendered outputs individually.
func (s *Sweeper) SweepOnce() int {
	cutoff := s.now().Add(-s.retention)
	removed := 0
	removed += s.removeExpiredDirs(s.workDir, cutoff)
	removed += s.removeExpiredFiles(s.outputDir, cutoff)
	return removed
}

func (s *Sweeper) removeExpiredDirs(root string, cutoff time.Time) int {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			s.logger.Warn("remove scratch dir failed",
				logging.String("path", path),
				logging.Error(err))
			continue
		}
		removed++
	}
	return removed
}

func (s *Sweeper) removeExpiredFiles(root string, cutoff time.Time) int {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn("remove output failed",
				logging.String("path", path),
				logging.Error(err))
			continue
		}
		removed++
	}
	return removed
}
