package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSources() error {
	if c.ChessCom.Enabled && c.ChessCom.Handle == "" {
		return errors.New("chesscom.handle must be set when chesscom.enabled is true")
	}
	if c.Lichess.Enabled && c.Lichess.Handle == "" {
		return errors.New("lichess.handle must be set when lichess.enabled is true")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.DefaultDepth < 1 || c.Engine.DefaultDepth > 99 {
		return fmt.Errorf("engine.default_depth must be between 1 and 99, got %d", c.Engine.DefaultDepth)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
