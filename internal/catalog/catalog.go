// Package catalog orchestrates the per-user game catalog: fanned-out archive
// fetches, manual batch imports, and the reconciliation pass that attaches
// each game's best-known evaluation status.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"rookery/internal/config"
	"rookery/internal/games"
	"rookery/internal/logging"
	"rookery/internal/metrics"
	"rookery/internal/reconcile"
	"rookery/internal/services"
	"rookery/internal/sources"
)

const component = "catalog"

// maxImportErrorSamples bounds the error list returned by ImportBatch.
const maxImportErrorSamples = 5

// Service aggregates archive fetches, manual imports, and persisted state
// into one unified catalog view.
type Service struct {
	store    *games.Store
	cfg      *config.Config
	fetchers map[games.Source]sources.Fetcher
	logger   *slog.Logger
}

// NewService constructs a catalog service. Fetchers may be nil or partial;
// sources without a fetcher or disabled in config are skipped at list time.
func NewService(store *games.Store, cfg *config.Config, fetchers []sources.Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	byTag := make(map[games.Source]sources.Fetcher, len(fetchers))
	for _, fetcher := range fetchers {
		if fetcher != nil {
			byTag[fetcher.Tag()] = fetcher
		}
	}
	return &Service{
		store:    store,
		cfg:      cfg,
		fetchers: byTag,
		logger:   logging.NewComponentLogger(logger, component),
	}
}

// ListOptions shapes a unified listing.
type ListOptions struct {
	// ExcludeCompleted drops games whose evaluation already completed.
	ExcludeCompleted bool
}

// ListResult is a unified listing plus non-fatal per-source warnings.
type ListResult struct {
	Games    []reconcile.Unified
	Warnings []sources.Warning
}

// ListUnified fetches fresh records from every enabled archive, persists
// first sightings, and reconciles them with the stored catalog. A failing or
// slow source degrades to a warning; its games are simply absent from this
// pass.
func (s *Service) ListUnified(ctx context.Context, userID string, opts ListOptions) (ListResult, error) {
	if strings.TrimSpace(userID) == "" {
		return ListResult{}, services.Wrap(services.ErrValidation, component, "list", "user id required", nil)
	}

	records, warnings := sources.Fetch(ctx, s.fetchRequests(), s.logger)
	for _, warning := range warnings {
		metrics.RecordSourceFetch(string(warning.Source), "error")
	}

	for _, record := range records {
		metricOutcome := "ok"
		if err := s.persistSighting(ctx, userID, record); err != nil {
			metricOutcome = "persist_error"
			s.logger.Warn("persist sighting failed",
				logging.String(logging.FieldSource, string(record.Source)),
				logging.Error(err))
		}
		metrics.RecordSourceFetch(string(record.Source), metricOutcome)
	}

	persisted, err := s.store.ListGames(ctx, userID)
	if err != nil {
		return ListResult{}, services.Wrap(services.ErrInternal, component, "list", "load catalog", err)
	}

	unified := reconcile.Merge(records, persisted, reconcile.Options{ExcludeCompleted: opts.ExcludeCompleted})
	metrics.RecordReconcilePass(len(unified))
	s.logger.Debug("catalog listed",
		logging.String(logging.FieldUser, userID),
		logging.Int("fetched", len(records)),
		logging.Int("persisted", len(persisted)),
		logging.Int("unified", len(unified)),
		logging.Int("warnings", len(warnings)))
	return ListResult{Games: unified, Warnings: warnings}, nil
}

// ListCatalog reads the persisted catalog without contacting any archive.
func (s *Service) ListCatalog(ctx context.Context, userID string) ([]*games.Game, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, services.Wrap(services.ErrValidation, component, "list catalog", "user id required", nil)
	}
	persisted, err := s.store.ListGames(ctx, userID)
	if err != nil {
		return nil, services.Wrap(services.ErrInternal, component, "list catalog", "load catalog", err)
	}
	return persisted, nil
}

// GetGame fetches one persisted game.
func (s *Service) GetGame(ctx context.Context, gameID string) (*games.Game, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, games.ErrGameNotFound) {
			return nil, services.Wrap(services.ErrNotFound, component, "get game", gameID, nil)
		}
		return nil, services.Wrap(services.ErrInternal, component, "get game", "", err)
	}
	return game, nil
}

// fetchRequests assembles one fan-out request per enabled, wired source.
func (s *Service) fetchRequests() []sources.Request {
	requests := make([]sources.Request, 0, 2)
	if s.cfg == nil {
		return requests
	}
	add := func(tag games.Source, sc config.SourceConfig) {
		if !sc.Enabled {
			return
		}
		fetcher, ok := s.fetchers[tag]
		if !ok {
			return
		}
		requests = append(requests, sources.Request{
			Fetcher: fetcher,
			Handle:  sc.Handle,
			Limit:   sc.FetchLimit,
			Timeout: sc.FetchTimeout(),
		})
	}
	add(games.SourceChessCom, s.cfg.ChessCom)
	add(games.SourceLichess, s.cfg.Lichess)
	return requests
}

// persistSighting writes an externally fetched record into the catalog,
// creating it pending on first sight and refreshing metadata afterwards.
func (s *Service) persistSighting(ctx context.Context, userID string, record sources.Record) error {
	if strings.TrimSpace(record.ExternalID) == "" {
		return nil
	}
	_, err := s.store.EnsureExternal(ctx, &games.Game{
		ID:          uuid.NewString(),
		UserID:      userID,
		Source:      record.Source,
		ExternalID:  record.ExternalID,
		White:       record.White,
		Black:       record.Black,
		WhiteRating: record.WhiteRating,
		BlackRating: record.BlackRating,
		Result:      record.Result,
		TimeControl: record.TimeControl,
		PlayedAt:    record.PlayedAt,
		Moves:       record.Moves,
	})
	if err != nil {
		return fmt.Errorf("ensure external game: %w", err)
	}
	return nil
}
