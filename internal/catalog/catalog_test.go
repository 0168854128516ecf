package catalog_test

import (
	"errors"
	"testing"
	"time"

	"rookery/internal/catalog"
	"rookery/internal/games"
	"rookery/internal/services"
	"rookery/internal/sources"
	"rookery/internal/testsupport"
)

func newCatalog(t *testing.T, fetchers ...sources.Fetcher) (*catalog.Service, *games.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t,
		testsupport.WithChessCom("tester_cc"),
		testsupport.WithLichess("tester_li"))
	store := testsupport.MustOpenStore(t, cfg)
	return catalog.NewService(store, cfg, fetchers, nil), store
}

func TestListUnifiedPersistsFirstSightings(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	fetcher := &testsupport.FakeFetcher{
		Source: games.SourceLichess,
		Records: []sources.Record{{
			Source:     games.SourceLichess,
			ExternalID: "https://lichess.org/abcd1234",
			White:      "Alice",
			Black:      "Bob",
			Result:     "1-0",
			PlayedAt:   now,
			Moves:      "1. e4 e5",
		}},
	}
	svc, store := newCatalog(t, fetcher)

	result, err := svc.ListUnified(t.Context(), "tester", catalog.ListOptions{})
	if err != nil {
		t.Fatalf("ListUnified: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
	if len(result.Games) != 1 {
		t.Fatalf("expected 1 unified game, got %d", len(result.Games))
	}
	got := result.Games[0]
	if got.GameID == "" {
		t.Fatal("first sighting should be catalogued with an internal id")
	}
	if got.Status != games.StatusPending {
		t.Fatalf("status = %q, want pending", got.Status)
	}

	persisted, err := store.GetGame(t.Context(), got.GameID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if persisted.ExternalID != "https://lichess.org/abcd1234" {
		t.Fatalf("raw external id not persisted: %q", persisted.ExternalID)
	}
}

func TestListUnifiedCarriesEvaluationStatus(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	fetcher := &testsupport.FakeFetcher{
		Source: games.SourceChessCom,
		Records: []sources.Record{{
			Source:     games.SourceChessCom,
			ExternalID: "https://www.chess.com/game/live/123456789",
			PlayedAt:   now,
			Moves:      "1. d4 d5",
		}},
	}
	svc, store := newCatalog(t, fetcher)

	existing := testsupport.NewGame(t, store, "tester", games.SourceChessCom,
		"https://www.chess.com/game/live/123456789",
		testsupport.WithStatus(games.StatusQueued))

	result, err := svc.ListUnified(t.Context(), "tester", catalog.ListOptions{})
	if err != nil {
		t.Fatalf("ListUnified: %v", err)
	}
	if len(result.Games) != 1 {
		t.Fatalf("expected 1 unified game, got %d", len(result.Games))
	}
	if result.Games[0].Status != games.StatusQueued {
		t.Fatalf("status = %q, want queued", result.Games[0].Status)
	}
	if result.Games[0].GameID != existing.ID {
		t.Fatalf("internal id not preserved across reconciliation")
	}
}

func TestListUnifiedSurvivesSourceFailure(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	failing := &testsupport.FakeFetcher{
		Source: games.SourceChessCom,
		Err:    errors.New("503 from upstream"),
	}
	healthy := &testsupport.FakeFetcher{
		Source: games.SourceLichess,
		Records: []sources.Record{{
			Source:     games.SourceLichess,
			ExternalID: "https://lichess.org/zzzz9999",
			PlayedAt:   now,
			Moves:      "1. c4",
		}},
	}
	svc, _ := newCatalog(t, failing, healthy)

	result, err := svc.ListUnified(t.Context(), "tester", catalog.ListOptions{})
	if err != nil {
		t.Fatalf("partial failure must not fail the listing: %v", err)
	}
	if len(result.Games) != 1 {
		t.Fatalf("expected healthy source's game, got %d", len(result.Games))
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Source != games.SourceChessCom {
		t.Fatalf("expected one chesscom warning, got %v", result.Warnings)
	}
	if !errors.Is(result.Warnings[0].Err, services.ErrUpstreamSource) {
		t.Fatalf("warning misclassified: %v", result.Warnings[0].Err)
	}
}

func TestListUnifiedExcludeCompleted(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	fetcher := &testsupport.FakeFetcher{
		Source: games.SourceLichess,
		Records: []sources.Record{
			{Source: games.SourceLichess, ExternalID: "https://lichess.org/done0001", PlayedAt: now, Moves: "1. e4"},
			{Source: games.SourceLichess, ExternalID: "https://lichess.org/open0001", PlayedAt: now.Add(-time.Minute), Moves: "1. d4"},
		},
	}
	svc, store := newCatalog(t, fetcher)
	testsupport.NewGame(t, store, "tester", games.SourceLichess, "https://lichess.org/done0001",
		testsupport.WithStatus(games.StatusCompleted))

	result, err := svc.ListUnified(t.Context(), "tester", catalog.ListOptions{ExcludeCompleted: true})
	if err != nil {
		t.Fatalf("ListUnified: %v", err)
	}
	if len(result.Games) != 1 {
		t.Fatalf("expected completed game filtered, got %d", len(result.Games))
	}
	if result.Games[0].ExternalID != "https://lichess.org/open0001" {
		t.Fatalf("wrong game survived filter: %+v", result.Games[0])
	}
}

func TestListUnifiedIncludesManualGames(t *testing.T) {
	svc, store := newCatalog(t)
	manual := testsupport.NewGame(t, store, "tester", games.SourceManual, "local-token-1")

	result, err := svc.ListUnified(t.Context(), "tester", catalog.ListOptions{})
	if err != nil {
		t.Fatalf("ListUnified: %v", err)
	}
	if len(result.Games) != 1 || result.Games[0].GameID != manual.ID {
		t.Fatalf("manual game missing from unified view: %+v", result.Games)
	}
}

func TestListUnifiedRequiresUser(t *testing.T) {
	svc, _ := newCatalog(t)

	if _, err := svc.ListUnified(t.Context(), "  ", catalog.ListOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGetGameNotFoundMapsTaxonomy(t *testing.T) {
	svc, _ := newCatalog(t)

	if _, err := svc.GetGame(t.Context(), "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
