package api_test

import (
	"errors"
	"testing"
	"time"

	"rookery/internal/api"
	"rookery/internal/catalog"
	"rookery/internal/games"
	"rookery/internal/reconcile"
	"rookery/internal/services"
	"rookery/internal/sources"
)

func TestFromGameFormatsTimestamps(t *testing.T) {
	played := time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC)
	dto := api.FromGame(&games.Game{
		ID:       "game-1",
		UserID:   "tester",
		Source:   games.SourceLichess,
		White:    "Alice",
		Black:    "Bob",
		PlayedAt: played,
		Status:   games.StatusQueued,
	})

	if dto.PlayedAt != "2026-06-01T14:30:00.000Z" {
		t.Fatalf("played at = %q", dto.PlayedAt)
	}
	if dto.Source != "lichess" || dto.Status != "queued" {
		t.Fatalf("enums not lowercased: %+v", dto)
	}
	if dto.CreatedAt != "" {
		t.Fatalf("zero time should render empty, got %q", dto.CreatedAt)
	}
}

func TestFromGameNil(t *testing.T) {
	if dto := api.FromGame(nil); dto.ID != "" {
		t.Fatalf("nil game should map to zero DTO, got %+v", dto)
	}
}

func TestFromJobOptionalTimestamps(t *testing.T) {
	started := time.Date(2026, 6, 2, 8, 0, 0, 0, time.UTC)
	dto := api.FromJob(&games.Job{
		ID:        "job-1",
		GameID:    "game-1",
		Status:    games.JobRunning,
		Priority:  7,
		StartedAt: &started,
	})

	if dto.StartedAt == "" || dto.FinishedAt != "" {
		t.Fatalf("optional timestamps wrong: %+v", dto)
	}
	if dto.Priority != 7 || dto.Status != "running" {
		t.Fatalf("fields lost: %+v", dto)
	}
}

func TestFromListResultCarriesWarnings(t *testing.T) {
	resp := api.FromListResult(catalog.ListResult{
		Games: []reconcile.Unified{{
			Record: sources.Record{Source: games.SourceChessCom, ExternalID: "https://www.chess.com/game/live/1"},
			GameID: "game-1",
			Status: games.StatusPending,
		}},
		Warnings: []sources.Warning{{
			Source: games.SourceLichess,
			Err:    services.Wrap(services.ErrUpstreamTimeout, "sources", "fetch", "lichess", errors.New("deadline exceeded")),
		}},
	})

	if len(resp.Games) != 1 || resp.Games[0].GameID != "game-1" {
		t.Fatalf("games not converted: %+v", resp.Games)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Source != "lichess" || resp.Warnings[0].Error == "" {
		t.Fatalf("warnings not converted: %+v", resp.Warnings)
	}
}

func TestFromImportReportCopiesErrors(t *testing.T) {
	source := catalog.ImportReport{Accepted: 2, Rejected: 1, Errors: []string{"entry 3: no move text"}}
	dto := api.FromImportReport(source)

	dto.Errors[0] = "mutated"
	if source.Errors[0] != "entry 3: no move text" {
		t.Fatal("converter must copy the error slice")
	}
}
