package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rookery/internal/games"
	"rookery/internal/logging"
)

// Runner drives one engine invocation per claimed job. Progress callbacks
// and the final outcome both funnel through guarded store transitions, so a
// cancellation landing mid-run simply makes the late writes lose: progress
// on a non-running job and completion of a terminal job are discarded.
type Runner struct {
	store   *games.Store
	engine  Engine
	logger  *slog.Logger
	timeout time.Duration
}

// NewRunner constructs a runner. A non-positive timeout disables the
// per-run deadline.
func NewRunner(store *games.Store, engine Engine, logger *slog.Logger, timeout time.Duration) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		store:   store,
		engine:  engine,
		logger:  logging.NewComponentLogger(logger, "analysis.runner"),
		timeout: timeout,
	}
}

// Run executes the engine for an already-claimed running job and records the
// terminal outcome. The error return covers infrastructure failures only;
// engine failures are journaled onto the job and return nil.
func (r *Runner) Run(ctx context.Context, job *games.Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	logger := r.logger.With(
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldGameID, job.GameID))

	game, err := r.store.GetGame(ctx, job.GameID)
	if err != nil {
		return r.finishFailed(ctx, logger, job.ID, "load game: "+err.Error())
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	started := time.Now()
	result, err := r.engine.Analyze(runCtx, game, job.Depth, func(update ProgressUpdate) {
		if progressErr := r.store.ReportJobProgress(ctx, job.ID, update.PositionsDone, update.PositionsAll); progressErr != nil {
			// A cancelled or otherwise finished job rejects late progress.
			logger.Debug("progress discarded", logging.Error(progressErr))
		}
	})
	if err != nil {
		return r.finishFailed(ctx, logger, job.ID, err.Error())
	}

	payload, err := MarshalResult(result)
	if err != nil {
		return r.finishFailed(ctx, logger, job.ID, err.Error())
	}
	if err := r.store.CompleteJob(ctx, job.ID, payload); err != nil {
		if errors.Is(err, games.ErrTerminal) || errors.Is(err, games.ErrInvalidTransition) {
			logger.Info("late completion discarded", logging.Error(err))
			return nil
		}
		return err
	}
	logger.Info("analysis completed", logging.Duration("elapsed", time.Since(started)))
	return nil
}

// finishFailed journals a failure outcome, tolerating jobs that already left
// the running state.
func (r *Runner) finishFailed(ctx context.Context, logger *slog.Logger, jobID, detail string) error {
	if err := r.store.FailJob(ctx, jobID, detail); err != nil {
		if errors.Is(err, games.ErrTerminal) || errors.Is(err, games.ErrInvalidTransition) {
			logger.Info("late failure discarded", logging.Error(err))
			return nil
		}
		return err
	}
	logger.Warn("analysis failed", logging.String("detail", detail))
	return nil
}
