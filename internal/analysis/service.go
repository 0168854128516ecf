package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"rookery/internal/games"
	"rookery/internal/logging"
	"rookery/internal/services"
)

const component = "analysis"

// Service exposes the evaluation job lifecycle over the games store. All
// transition guards live in the store's SQL so concurrent writers race on
// the database row, not on in-process state; Service maps the store's typed
// failures onto the caller-facing taxonomy.
type Service struct {
	store  *games.Store
	logger *slog.Logger
}

// NewService constructs a lifecycle service.
func NewService(store *games.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:  store,
		logger: logging.NewComponentLogger(logger, component),
	}
}

// Request creates a queued analysis job for a game. Priorities outside
// [1,10] are rejected, not clamped; depth defaulting is the caller's job.
func (s *Service) Request(ctx context.Context, gameID string, depth, priority int) (*games.Job, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, services.Wrap(services.ErrValidation, component, "request", "game id required", nil)
	}
	if depth <= 0 || depth > 99 {
		return nil, services.Wrap(services.ErrValidation, component, "request", fmt.Sprintf("depth %d outside [1,99]", depth), nil)
	}
	if !games.ValidPriority(priority) {
		return nil, services.Wrap(services.ErrValidation, component, "request",
			fmt.Sprintf("priority %d outside [%d,%d]", priority, games.MinPriority, games.MaxPriority), nil)
	}

	job, err := s.store.CreateJob(ctx, uuid.NewString(), gameID, depth, priority)
	if err != nil {
		return nil, s.mapStoreError("request", err)
	}
	s.logger.Info("analysis requested",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldGameID, gameID),
		logging.Int("depth", depth),
		logging.Int("priority", priority))
	return job, nil
}

// Get fetches a job by identifier.
func (s *Service) Get(ctx context.Context, jobID string) (*games.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, s.mapStoreError("get", err)
	}
	return job, nil
}

// List returns jobs, optionally filtered by status.
func (s *Service) List(ctx context.Context, statuses ...games.JobStatus) ([]*games.Job, error) {
	jobs, err := s.store.ListJobs(ctx, statuses...)
	if err != nil {
		return nil, s.mapStoreError("list", err)
	}
	return jobs, nil
}

// Health reports aggregate job counts per lifecycle state.
func (s *Service) Health(ctx context.Context) (games.HealthSummary, error) {
	summary, err := s.store.JobHealth(ctx)
	if err != nil {
		return games.HealthSummary{}, s.mapStoreError("health", err)
	}
	return summary, nil
}

// SetPriority replaces a queued job's priority.
func (s *Service) SetPriority(ctx context.Context, jobID string, priority int) error {
	if !games.ValidPriority(priority) {
		return services.Wrap(services.ErrValidation, component, "set priority",
			fmt.Sprintf("priority %d outside [%d,%d]", priority, games.MinPriority, games.MaxPriority), nil)
	}
	if err := s.store.SetJobPriority(ctx, jobID, priority); err != nil {
		return s.mapStoreError("set priority", err)
	}
	s.logger.Info("priority updated",
		logging.String(logging.FieldJobID, jobID),
		logging.Int("priority", priority))
	return nil
}

// AdjustPriority shifts a queued job's priority by delta. A shift that would
// leave [1,10] is rejected rather than clamped, so repeated bumps at the
// boundary fail every time.
func (s *Service) AdjustPriority(ctx context.Context, jobID string, delta int) (*games.Job, error) {
	if err := s.store.AdjustJobPriority(ctx, jobID, delta); err != nil {
		return nil, s.mapStoreError("adjust priority", err)
	}
	return s.Get(ctx, jobID)
}

// Cancel moves a queued or running job to cancelled.
func (s *Service) Cancel(ctx context.Context, jobID string) error {
	if err := s.store.CancelJob(ctx, jobID); err != nil {
		return s.mapStoreError("cancel", err)
	}
	s.logger.Info("analysis cancelled", logging.String(logging.FieldJobID, jobID))
	return nil
}

// Retry re-queues a failed job.
func (s *Service) Retry(ctx context.Context, jobID string) error {
	if err := s.store.RetryJob(ctx, jobID); err != nil {
		return s.mapStoreError("retry", err)
	}
	s.logger.Info("analysis retried", logging.String(logging.FieldJobID, jobID))
	return nil
}

// mapStoreError translates the store's typed transition failures onto the
// caller-facing taxonomy.
func (s *Service) mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, games.ErrGameNotFound), errors.Is(err, games.ErrJobNotFound):
		return services.Wrap(services.ErrNotFound, component, op, "", err)
	case errors.Is(err, games.ErrActiveJob), errors.Is(err, games.ErrTerminal):
		return services.Wrap(services.ErrConflict, component, op, "", err)
	case errors.Is(err, games.ErrInvalidTransition),
		errors.Is(err, games.ErrPriorityLocked),
		errors.Is(err, games.ErrPriorityRange),
		errors.Is(err, games.ErrProgressRegressed):
		return services.Wrap(services.ErrValidation, component, op, "", err)
	default:
		return services.Wrap(services.ErrInternal, component, op, "", err)
	}
}
