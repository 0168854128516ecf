package main

import (
	"context"
	"errors"
	"log/slog"

	"rookery/internal/analysis"
	"rookery/internal/config"
	"rookery/internal/engine"
	"rookery/internal/games"
)

// idleEngine stands in when no analyzer is configured. Claimed jobs fail
// with a clear detail instead of sitting in the queue forever.
type idleEngine struct{}

func (idleEngine) Analyze(context.Context, *games.Game, int, func(analysis.ProgressUpdate)) (*analysis.Result, error) {
	return nil, errors.New("no analysis engine configured; set engine.command in the config")
}

func engineFromConfig(cfg *config.Config, logger *slog.Logger) analysis.Engine {
	if cfg.Engine.Command != "" {
		return engine.NewCLI(engine.WithBinary(cfg.Engine.Command))
	}
	logger.Warn("no analysis engine configured; evaluation jobs will fail until engine.command is set")
	return idleEngine{}
}
