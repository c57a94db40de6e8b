package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"chorus/internal/api"
	"chorus/internal/cleanup"
	"chorus/internal/config"
	"chorus/internal/deps"
	"chorus/internal/jobs"
	"chorus/internal/logging"
	"chorus/internal/pipeline"
)

// InterruptedMessage is recorded on jobs found mid-flight at daemon start.
// Their scratch state is gone with the previous process, so they are failed
// explicitly rather than silently resumed.
const InterruptedMessage = "interrupted by daemon restart"

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *jobs.Store
	launcher *pipeline.Launcher
	sweeper  *cleanup.Sweeper
	jobSvc   *api.JobService

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	apiSrv *apiServer
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	JobDBPath    string
	LockFilePath string
	Jobs         jobs.HealthSummary
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, launcher *pipeline.Launcher, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || launcher == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, launcher, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "chorusd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		launcher: launcher,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.jobSvc = api.NewJobService(store, launcher)
	if cfg.Cleanup.Enabled {
		d.sweeper = cleanup.New(cfg, logger)
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiSrv = srv
	return d, nil
}

// Start acquires the daemon lock, recovers interrupted jobs, and launches the
// background services.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another chorus daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	count, err := d.store.FailInterrupted(d.ctx, InterruptedMessage)
	if err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("recover interrupted jobs: %w", err)
	}
	if count > 0 {
		d.logger.Warn("failed interrupted jobs from previous run", logging.Int64("count", count))
	}

	if d.sweeper != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.sweeper.Run(d.ctx)
		}()
	}

	if d.apiSrv != nil {
		if err := d.apiSrv.start(d.ctx); err != nil {
			d.Stop()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("chorus daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.apiSrv != nil {
		d.apiSrv.stop()
	}
	d.launcher.Stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	if d.running.Swap(false) {
		d.logger.Info("chorus daemon stopped")
	}
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Jobs exposes the job facade backing the API surface.
func (d *Daemon) Jobs() *api.JobService {
	return d.jobSvc
}

// APIAddr reports the bound API listener address, or empty before Start.
func (d *Daemon) APIAddr() string {
	if d.apiSrv == nil {
		return ""
	}
	return d.apiSrv.addr()
}

// Status collects runtime information for the status endpoint.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		JobDBPath:    d.store.Path(),
		LockFilePath: d.lockPath,
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
	if health, err := d.store.Health(ctx); err == nil {
		status.Jobs = health
	}
	return status
}
