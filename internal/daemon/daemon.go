package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"rookery/internal/analysis"
	"rookery/internal/catalog"
	"rookery/internal/config"
	"rookery/internal/games"
	"rookery/internal/logging"
)

// Daemon coordinates background job dispatch and the HTTP API, and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *games.Store
	catalog  *catalog.Service
	analysis *analysis.Service
	runner   *analysis.Runner

	dispatcher *dispatcher
	apiServer  *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	User         string
	GameCount    int
	Jobs         games.HealthSummary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *games.Store, cat *catalog.Service, svc *analysis.Service, runner *analysis.Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || cat == nil || svc == nil || runner == nil {
		return nil, errors.New("daemon requires config, store, catalog, analysis service, and runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		catalog:  cat,
		analysis: svc,
		runner:   runner,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.dispatcher = newDispatcher(store, runner, cfg, logger)

	apiSrv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiServer = apiSrv
	return d, nil
}

// Start acquires the daemon lock and launches the dispatcher and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another rookery daemon instance is already running")
	}

	// A crash mid-analysis leaves jobs stranded in running. Put them back in
	// the queue before the dispatcher starts claiming.
	requeued, err := d.store.RequeueRunning(ctx)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("requeue orphaned jobs: %w", err)
	}
	if requeued > 0 {
		d.logger.Info("requeued orphaned jobs", logging.Int64("count", requeued))
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.apiServer.start(runCtx); err != nil {
		cancel()
		d.cancel = nil
		_ = d.lock.Unlock()
		return err
	}
	d.dispatcher.start(runCtx)

	d.running.Store(true)
	d.logger.Info("rookery daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.dispatcher.stop()
	d.apiServer.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("rookery daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		User:         d.cfg.Profile.User,
	}
	if count, err := d.store.CountGames(ctx, d.cfg.Profile.User); err == nil {
		status.GameCount = count
	}
	if health, err := d.store.JobHealth(ctx); err == nil {
		status.Jobs = health
	}
	return status
}

// APIAddress returns the bound HTTP listen address, or empty when the API
// server is disabled or not started.
func (d *Daemon) APIAddress() string {
	return d.apiServer.address()
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.cfg.LogPath()
}

// User returns the configured catalog owner.
func (d *Daemon) User() string {
	return d.cfg.Profile.User
}

// ListUnified returns the reconciled catalog for the configured user.
func (d *Daemon) ListUnified(ctx context.Context, opts catalog.ListOptions) (catalog.ListResult, error) {
	return d.catalog.ListUnified(ctx, d.cfg.Profile.User, opts)
}

// ListCatalog returns the persisted catalog without fetching.
func (d *Daemon) ListCatalog(ctx context.Context) ([]*games.Game, error) {
	return d.catalog.ListCatalog(ctx, d.cfg.Profile.User)
}

// ImportBatch imports multi-record PGN text for the configured user.
func (d *Daemon) ImportBatch(ctx context.Context, text string) (catalog.ImportReport, error) {
	return d.catalog.ImportBatch(ctx, d.cfg.Profile.User, text)
}

// RequestAnalysis queues engine analysis for a game. A depth of zero selects
// the configured default.
func (d *Daemon) RequestAnalysis(ctx context.Context, gameID string, depth, priority int) (*games.Job, error) {
	if depth <= 0 {
		depth = d.cfg.Engine.DefaultDepth
	}
	if priority == 0 {
		priority = games.DefaultPriority
	}
	return d.analysis.Request(ctx, gameID, depth, priority)
}

// SetPriority replaces a queued job's priority.
func (d *Daemon) SetPriority(ctx context.Context, jobID string, priority int) error {
	return d.analysis.SetPriority(ctx, jobID, priority)
}

// AdjustPriority shifts a queued job's priority by delta.
func (d *Daemon) AdjustPriority(ctx context.Context, jobID string, delta int) (*games.Job, error) {
	return d.analysis.AdjustPriority(ctx, jobID, delta)
}

// CancelJob cancels a queued or running job.
func (d *Daemon) CancelJob(ctx context.Context, jobID string) error {
	return d.analysis.Cancel(ctx, jobID)
}

// RetryJob re-queues a failed job.
func (d *Daemon) RetryJob(ctx context.Context, jobID string) error {
	return d.analysis.Retry(ctx, jobID)
}

// GetJob fetches a job by identifier.
func (d *Daemon) GetJob(ctx context.Context, jobID string) (*games.Job, error) {
	return d.analysis.Get(ctx, jobID)
}

// ListJobs returns jobs, optionally filtered by status.
func (d *Daemon) ListJobs(ctx context.Context, statuses ...games.JobStatus) ([]*games.Job, error) {
	return d.analysis.List(ctx, statuses...)
}

// JobHealth returns aggregate job diagnostics.
func (d *Daemon) JobHealth(ctx context.Context) (games.HealthSummary, error) {
	return d.analysis.Health(ctx)
}
