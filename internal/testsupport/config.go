package testsupport

import (
	"path/filepath"
	"testing"

	"rookery/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Profile.User = "tester"
	cfgVal.Dispatcher.PollIntervalSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithUser overrides the catalog owner on the test config.
func WithUser(user string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Profile.User = user
	}
}

// WithChessCom enables the chess.com source with the given handle.
func WithChessCom(handle string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ChessCom.Enabled = true
		b.cfg.ChessCom.Handle = handle
	}
}

// WithLichess enables the lichess source with the given handle.
func WithLichess(handle string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lichess.Enabled = true
		b.cfg.Lichess.Handle = handle
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
