package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"chorus/internal/logging"
)

// Launcher dispatches executions onto background goroutines with a bounded
// concurrency budget. Submit paths return as soon as the goroutine is
// scheduled; the slot wait happens inside the goroutine so callers never
// block behind a busy pipeline.
type Launcher struct {
	executor *Executor
	logger   *slog.Logger
	slots    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	// mu orders Launch's wg.Add against Stop's cancel so a late submit can
	// never Add while Stop is already waiting.
	mu sync.Mutex
	wg sync.WaitGroup
}

// NewLauncher creates a launcher running at most maxConcurrent executions at
// once.
func NewLauncher(executor *Executor, maxConcurrent int, logger *slog.Logger) *Launcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Launcher{
		executor: executor,
		logger:   logging.NewComponentLogger(logger, "launcher"),
		slots:    make(chan struct{}, maxConcurrent),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Launch schedules an execution for jobID and returns immediately. Calls
// after Stop are logged and dropped.
func (l *Launcher) Launch(jobID int64) {
	l.mu.Lock()
	if l.ctx.Err() != nil {
		l.mu.Unlock()
		l.logger.Warn("launch rejected after shutdown",
			logging.Int64(logging.FieldJobID, jobID))
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()
	go func() {
		defer l.wg.Done()

		select {
		case l.slots <- struct{}{}:
		case <-l.ctx.Done():
			l.logger.Warn("launcher stopped before job could start",
				logging.Int64(logging.FieldJobID, jobID))
			return
		}
		defer func() { <-l.slots }()

		if err := l.executor.Run(l.ctx, jobID); err != nil {
			l.logger.Error("job dispatch failed",
				logging.Int64(logging.FieldJobID, jobID),
				logging.Error(err))
		}
	}()
}

// Stop cancels pending work and waits for in-flight executions to finish.
func (l *Launcher) Stop() {
	l.mu.Lock()
	l.cancel()
	l.mu.Unlock()
	l.wg.Wait()
}
