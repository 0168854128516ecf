package sources

import (
	"context"
	"time"

	"rookery/internal/games"
)

// Record is one game as reported by an archive, already shaped into the
// internal variant for its source. Records are ephemeral: they are rebuilt
// on every fetch and never stored as-is.
type Record struct {
	Source      games.Source
	ExternalID  string
	White       string
	Black       string
	WhiteRating int
	BlackRating int
	Result      string
	TimeControl string
	PlayedAt    time.Time
	Moves       string
}

// Fetcher wraps one external archive's read API.
type Fetcher interface {
	// Tag identifies which archive this fetcher queries.
	Tag() games.Source
	// Fetch returns the most recent games for an account handle, newest
	// first, up to limit. Implementations must honor ctx cancellation.
	Fetch(ctx context.Context, handle string, limit int) ([]Record, error)
}

// Request pairs a fetcher with its per-call parameters.
type Request struct {
	Fetcher Fetcher
	Handle  string
	Limit   int
	Timeout time.Duration
}

// Warning annotates a non-fatal per-source fetch failure.
type Warning struct {
	Source games.Source
	Err    error
}
