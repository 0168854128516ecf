package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"rookery/internal/games"
	"rookery/internal/logging"
	"rookery/internal/metrics"
	"rookery/internal/pgn"
	"rookery/internal/services"
	"rookery/internal/sources"
)

// ImportReport summarizes one batch import.
type ImportReport struct {
	Accepted int
	Rejected int
	// Errors holds up to maxImportErrorSamples rejection messages.
	Errors []string
}

// ImportBatch parses free-form multi-record PGN text and persists each
// well-formed entry as a manual catalog game. Malformed entries are counted
// and sampled, never fatal; an input yielding zero entries is a validation
// failure, not an empty success.
func (s *Service) ImportBatch(ctx context.Context, userID, text string) (ImportReport, error) {
	if strings.TrimSpace(userID) == "" {
		return ImportReport{}, services.Wrap(services.ErrValidation, component, "import", "user id required", nil)
	}

	entries := pgn.Parse(text)
	if len(entries) == 0 {
		return ImportReport{}, services.Wrap(services.ErrValidation, component, "import", "no importable records found", nil)
	}

	report := ImportReport{}
	for i, entry := range entries {
		game, err := manualGame(userID, entry)
		if err != nil {
			report.Rejected++
			if len(report.Errors) < maxImportErrorSamples {
				report.Errors = append(report.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
			}
			continue
		}
		if _, err := s.store.InsertGame(ctx, game); err != nil {
			return report, services.Wrap(services.ErrInternal, component, "import", "persist entry", err)
		}
		report.Accepted++
	}

	metrics.RecordImport(report.Accepted, report.Rejected)
	s.logger.Info("batch imported",
		logging.String(logging.FieldUser, userID),
		logging.Int("accepted", report.Accepted),
		logging.Int("rejected", report.Rejected))
	return report, nil
}

// manualGame converts one parsed entry into a manual catalog game. The
// external identifier is a locally generated opaque token, distinct from the
// internal id.
func manualGame(userID string, entry pgn.Entry) (*games.Game, error) {
	if strings.TrimSpace(entry.Moves) == "" {
		return nil, fmt.Errorf("no move text")
	}
	game := &games.Game{
		ID:          uuid.NewString(),
		UserID:      userID,
		Source:      games.SourceManual,
		ExternalID:  uuid.NewString(),
		White:       sources.CleanPlayerName(entry.Tag("White")),
		Black:       sources.CleanPlayerName(entry.Tag("Black")),
		WhiteRating: parseRating(entry.Tag("WhiteElo")),
		BlackRating: parseRating(entry.Tag("BlackElo")),
		Result:      entry.Tag("Result"),
		TimeControl: entry.Tag("TimeControl"),
		PlayedAt:    parsePlayedAt(entry),
		Moves:       entry.Moves,
		Status:      games.StatusPending,
	}
	return game, nil
}

func parseRating(raw string) int {
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || rating < 0 {
		return 0
	}
	return rating
}

// parsePlayedAt resolves a play timestamp from the UTCDate/UTCTime tag pair,
// falling back to the Date tag and finally the import time.
func parsePlayedAt(entry pgn.Entry) time.Time {
	date := entry.Tag("UTCDate")
	if date == "" {
		date = entry.Tag("Date")
	}
	if date != "" {
		if clock := entry.Tag("UTCTime"); clock != "" {
			if ts, err := time.Parse("2006.01.02 15:04:05", date+" "+clock); err == nil {
				return ts.UTC()
			}
		}
		if ts, err := time.Parse("2006.01.02", date); err == nil {
			return ts.UTC()
		}
	}
	return time.Now().UTC()
}
