package testsupport

import (
	"path/filepath"
	"testing"

	"dupicheck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a default config whose log and metrics output land in a
// per-test temp directory. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Logging.Dir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithThresholds overrides the match and manual-review thresholds.
func WithThresholds(threshold, manual int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.Threshold = threshold
		cfg.Scan.ManualThreshold = manual
	}
}

// WithoutCache disables the fingerprint store.
func WithoutCache() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cache.Enabled = false
	}
}

// WithStorePath pins the fingerprint store to an explicit location.
func WithStorePath(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cache.Path = path
	}
}
