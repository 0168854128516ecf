package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"rookery/internal/config"
	"rookery/internal/games"
)

// MustOpenStore opens a games.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *games.Store {
	t.Helper()

	store, err := games.Open(cfg)
	if err != nil {
		t.Fatalf("games.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// GameOption mutates a seeded game before it is persisted.
type GameOption func(*games.Game)

// WithStatus sets the evaluation status on a seeded game.
func WithStatus(status games.Status) GameOption {
	return func(g *games.Game) {
		g.Status = status
	}
}

// WithPlayedAt sets the play timestamp on a seeded game.
func WithPlayedAt(playedAt time.Time) GameOption {
	return func(g *games.Game) {
		g.PlayedAt = playedAt
	}
}

// WithPlayers sets both player names on a seeded game.
func WithPlayers(white, black string) GameOption {
	return func(g *games.Game) {
		g.White = white
		g.Black = black
	}
}

// NewGame persists a catalog game with sensible defaults for tests.
func NewGame(t testing.TB, store *games.Store, userID string, source games.Source, externalID string, opts ...GameOption) *games.Game {
	t.Helper()

	game := &games.Game{
		ID:          uuid.NewString(),
		UserID:      userID,
		Source:      source,
		ExternalID:  externalID,
		White:       "White Player",
		Black:       "Black Player",
		WhiteRating: 1500,
		BlackRating: 1500,
		Result:      "1-0",
		TimeControl: "600",
		PlayedAt:    time.Now().UTC().Truncate(time.Second),
		Moves:       "1. e4 e5 2. Nf3 Nc6",
		Status:      games.StatusPending,
	}
	for _, opt := range opts {
		opt(game)
	}

	inserted, err := store.InsertGame(context.Background(), game)
	if err != nil {
		t.Fatalf("store.InsertGame: %v", err)
	}
	return inserted
}

// NewJob creates a queued analysis job for the given game.
func NewJob(t testing.TB, store *games.Store, gameID string, depth, priority int) *games.Job {
	t.Helper()

	job, err := store.CreateJob(context.Background(), uuid.NewString(), gameID, depth, priority)
	if err != nil {
		t.Fatalf("store.CreateJob: %v", err)
	}
	return job
}
