package games_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"rookery/internal/games"
	"rookery/internal/testsupport"
)

func TestInsertGameRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	played := time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC)
	game := testsupport.NewGame(t, store, "tester", games.SourceLichess, "abcd1234",
		testsupport.WithPlayedAt(played),
		testsupport.WithPlayers("Alice", "Bob"))

	loaded, err := store.GetGame(t.Context(), game.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if loaded.Source != games.SourceLichess || loaded.ExternalID != "abcd1234" {
		t.Fatalf("identity fields lost: %+v", loaded)
	}
	if loaded.White != "Alice" || loaded.Black != "Bob" {
		t.Fatalf("player fields lost: %+v", loaded)
	}
	if !loaded.PlayedAt.Equal(played) {
		t.Fatalf("played at = %v, want %v", loaded.PlayedAt, played)
	}
	if loaded.Status != games.StatusPending {
		t.Fatalf("status = %q, want pending", loaded.Status)
	}
	if loaded.CreatedAt.IsZero() || loaded.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be stamped")
	}
}

func TestInsertGameValidation(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	if _, err := store.InsertGame(t.Context(), nil); err == nil {
		t.Fatal("expected error for nil game")
	}
	if _, err := store.InsertGame(t.Context(), &games.Game{UserID: "tester", Source: games.SourceManual}); err == nil {
		t.Fatal("expected error for missing id")
	}
	if _, err := store.InsertGame(t.Context(), &games.Game{ID: uuid.NewString(), UserID: "tester", Source: "unknown"}); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestGetGameNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	if _, err := store.GetGame(t.Context(), uuid.NewString()); !errors.Is(err, games.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestListGamesNewestFirst(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := testsupport.NewGame(t, store, "tester", games.SourceChessCom, "101", testsupport.WithPlayedAt(base.Add(-48*time.Hour)))
	recent := testsupport.NewGame(t, store, "tester", games.SourceChessCom, "102", testsupport.WithPlayedAt(base))
	testsupport.NewGame(t, store, "someone-else", games.SourceChessCom, "103", testsupport.WithPlayedAt(base))

	listed, err := store.ListGames(t.Context(), "tester")
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 games for tester, got %d", len(listed))
	}
	if listed[0].ID != recent.ID || listed[1].ID != old.ID {
		t.Fatalf("wrong order: got %s then %s", listed[0].ExternalID, listed[1].ExternalID)
	}
}

func TestFindExternalMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	found, err := store.FindExternal(t.Context(), "tester", games.SourceLichess, "missing01")
	if err != nil {
		t.Fatalf("FindExternal: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil for absent row, got %+v", found)
	}
}

func TestEnsureExternalInsertsOnFirstSight(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	incoming := &games.Game{
		ID:         uuid.NewString(),
		UserID:     "tester",
		Source:     games.SourceChessCom,
		ExternalID: "987654",
		White:      "Alice",
		Black:      "Bob",
		Result:     "1-0",
		PlayedAt:   time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	}
	stored, err := store.EnsureExternal(t.Context(), incoming)
	if err != nil {
		t.Fatalf("EnsureExternal: %v", err)
	}
	if stored.ID != incoming.ID {
		t.Fatalf("expected new row to keep supplied id, got %s", stored.ID)
	}
	if stored.Status != games.StatusPending {
		t.Fatalf("first sight status = %q, want pending", stored.Status)
	}
}

func TestEnsureExternalRefreshesWithoutTouchingStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	existing := testsupport.NewGame(t, store, "tester", games.SourceLichess, "xyzw9876",
		testsupport.WithStatus(games.StatusCompleted),
		testsupport.WithPlayers("Alice", "Bob"))

	resighted := &games.Game{
		ID:         uuid.NewString(),
		UserID:     "tester",
		Source:     games.SourceLichess,
		ExternalID: "xyzw9876",
		White:      "Alice Updated",
		Black:      "Bob Updated",
		Result:     "1/2-1/2",
		PlayedAt:   time.Date(2026, 4, 3, 20, 0, 0, 0, time.UTC),
	}
	stored, err := store.EnsureExternal(t.Context(), resighted)
	if err != nil {
		t.Fatalf("EnsureExternal: %v", err)
	}
	if stored.ID != existing.ID {
		t.Fatalf("expected existing row to be reused, got %s want %s", stored.ID, existing.ID)
	}
	if stored.White != "Alice Updated" || stored.Result != "1/2-1/2" {
		t.Fatalf("metadata not refreshed: %+v", stored)
	}
	if stored.Status != games.StatusCompleted {
		t.Fatalf("status changed by resighting: %q", stored.Status)
	}

	count, err := store.CountGames(t.Context(), "tester")
	if err != nil {
		t.Fatalf("CountGames: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected no duplicate row, count = %d", count)
	}
}

func TestEnsureExternalRequiresExternalID(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	_, err := store.EnsureExternal(t.Context(), &games.Game{
		ID:     uuid.NewString(),
		UserID: "tester",
		Source: games.SourceChessCom,
	})
	if err == nil {
		t.Fatal("expected error for missing external id")
	}
}
