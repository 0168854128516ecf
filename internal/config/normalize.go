package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProfile()
	c.normalizeSources()
	c.normalizeEngine()
	c.normalizeDispatcher()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeProfile() {
	c.Profile.User = strings.TrimSpace(c.Profile.User)
	if c.Profile.User == "" {
		c.Profile.User = defaultUser
	}
}

func (c *Config) normalizeSources() {
	normalizeSource(&c.ChessCom)
	normalizeSource(&c.Lichess)
}

func normalizeSource(s *SourceConfig) {
	s.Handle = strings.TrimSpace(s.Handle)
	if s.FetchLimit <= 0 {
		s.FetchLimit = defaultFetchLimit
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = defaultFetchTimeoutSeconds
	}
}

func (c *Config) normalizeEngine() {
	c.Engine.Command = strings.TrimSpace(c.Engine.Command)
	c.Engine.Endpoint = strings.TrimSpace(c.Engine.Endpoint)
	if c.Engine.DefaultDepth <= 0 {
		c.Engine.DefaultDepth = defaultEngineDepth
	}
	if c.Engine.TimeoutSeconds <= 0 {
		c.Engine.TimeoutSeconds = defaultEngineTimeout
	}
}

func (c *Config) normalizeDispatcher() {
	if c.Dispatcher.PollIntervalSeconds <= 0 {
		c.Dispatcher.PollIntervalSeconds = defaultPollSeconds
	}
	if c.Dispatcher.Workers <= 0 {
		c.Dispatcher.Workers = defaultWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
