package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rookery/internal/analysis"
	"rookery/internal/config"
	"rookery/internal/games"
	"rookery/internal/logging"
	"rookery/internal/metrics"
)

// dispatcher polls the store for queued jobs and hands them to the runner,
// bounded by the configured worker count.
type dispatcher struct {
	store  *games.Store
	runner *analysis.Runner
	logger *slog.Logger

	pollInterval time.Duration
	workers      int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newDispatcher(store *games.Store, runner *analysis.Runner, cfg *config.Config, logger *slog.Logger) *dispatcher {
	workers := cfg.Dispatcher.Workers
	if workers < 1 {
		workers = 1
	}
	interval := cfg.PollInterval()
	if interval <= 0 {
		interval = time.Second
	}
	return &dispatcher{
		store:        store,
		runner:       runner,
		logger:       logger,
		pollInterval: interval,
		workers:      workers,
	}
}

func (d *dispatcher) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	slots := make(chan struct{}, d.workers)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.loop(runCtx, slots)
	}()
}

func (d *dispatcher) stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
}

func (d *dispatcher) loop(ctx context.Context, slots chan struct{}) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		d.drainQueue(ctx, slots)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// drainQueue claims jobs until the queue is empty or all worker slots are
// occupied.
func (d *dispatcher) drainQueue(ctx context.Context, slots chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case slots <- struct{}{}:
		}

		job, err := d.store.ClaimNextQueued(ctx)
		if err != nil {
			<-slots
			if ctx.Err() != nil {
				return
			}
			metrics.RecordDispatcherError()
			d.logger.Error("failed to claim queued job", logging.Error(err))
			return
		}
		if job == nil {
			<-slots
			metrics.RecordDispatcherIdle()
			d.publishGauges(ctx)
			return
		}

		metrics.RecordDispatcherClaim()
		d.publishGauges(ctx)
		d.wg.Add(1)
		go func(job *games.Job) {
			defer d.wg.Done()
			defer func() { <-slots }()
			if err := d.runner.Run(ctx, job); err != nil {
				metrics.RecordDispatcherError()
				d.logger.Error("analysis run failed",
					logging.String("job_id", job.ID),
					logging.String("game_id", job.GameID),
					logging.Error(err))
			}
			d.publishGauges(ctx)
		}(job)
	}
}

func (d *dispatcher) publishGauges(ctx context.Context) {
	health, err := d.store.JobHealth(ctx)
	if err != nil {
		return
	}
	metrics.UpdateJobGauges(health.Queued, health.Running)
}
