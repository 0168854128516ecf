// Package engine drives an external analyzer binary. The binary receives the
// game's move text on stdin and emits newline-delimited JSON events on
// stdout: progress events while positions are scored, then a single result
// event before exit.
package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"rookery/internal/analysis"
	"rookery/internal/games"
)

var commandContext = exec.CommandContext

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps a command-line analyzer.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "rookery-eval"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

type event struct {
	Type          string           `json:"type"`
	PositionsDone int              `json:"positions_done"`
	PositionsAll  int              `json:"positions_all"`
	Result        *analysis.Result `json:"result"`
}

// Analyze launches the analyzer over the game's moves and streams progress
// until the result event arrives.
func (c *CLI) Analyze(ctx context.Context, game *games.Game, depth int, progress func(analysis.ProgressUpdate)) (*analysis.Result, error) {
	if game == nil {
		return nil, errors.New("game required")
	}
	moves := strings.TrimSpace(game.Moves)
	if moves == "" {
		return nil, errors.New("game has no move text to analyze")
	}
	if depth < 1 {
		return nil, fmt.Errorf("depth must be positive, got %d", depth)
	}

	args := []string{"analyze", "--depth", strconv.Itoa(depth), "--progress-json"}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(moves + "\n")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start analyzer: %w", err)
	}

	var result *analysis.Result
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		var payload event
		if err := json.Unmarshal(scanner.Bytes(), &payload); err != nil {
			continue
		}
		switch payload.Type {
		case "progress":
			if progress != nil {
				progress(analysis.ProgressUpdate{
					PositionsDone: payload.PositionsDone,
					PositionsAll:  payload.PositionsAll,
				})
			}
		case "result":
			if payload.Result != nil {
				result = payload.Result
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read analyzer output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("analyzer failed: %w", err)
	}
	if result == nil {
		return nil, errors.New("analyzer exited without a result event")
	}
	return result, nil
}

var _ analysis.Engine = (*CLI)(nil)
