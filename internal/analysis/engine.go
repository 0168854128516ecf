package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"rookery/internal/games"
)

// ProgressUpdate reports how far an engine run has advanced through a game's
// positions.
type ProgressUpdate struct {
	PositionsDone int
	PositionsAll  int
}

// Result carries the metrics an engine produced for one game.
type Result struct {
	Depth         int     `json:"depth"`
	PositionsAll  int     `json:"positions_all"`
	ACPLWhite     float64 `json:"acpl_white"`
	ACPLBlack     float64 `json:"acpl_black"`
	BlundersWhite int     `json:"blunders_white"`
	BlundersBlack int     `json:"blunders_black"`
	BestLine      string  `json:"best_line,omitempty"`
}

// MarshalResult serializes a result for durable storage on the job row.
func MarshalResult(result *Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result is nil")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal analysis result: %w", err)
	}
	return string(payload), nil
}

// Engine abstracts the remote evaluation collaborator. Implementations push
// progress through the callback before returning the final result; the
// callback may be nil. Cancelling ctx is advisory: a slow engine may still
// deliver a late result, which the runner discards against terminal jobs.
type Engine interface {
	Analyze(ctx context.Context, game *games.Game, depth int, progress func(ProgressUpdate)) (*Result, error)
}
