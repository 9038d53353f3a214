package testsupport

import (
	"path/filepath"
	"testing"

	"filmtrack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test.
// Intervals are shortened so timers fire within a test's lifetime.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.QuarantineDir = filepath.Join(base, "data", ".sync-conflicts")
	cfgVal.Storage.CheckpointIntervalSeconds = 1
	cfgVal.Lock.HeartbeatIntervalSeconds = 1
	cfgVal.Lock.StaleThresholdSeconds = 5
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithDatabaseFile overrides the canonical data file name and derives the
// lock file name from it.
func WithDatabaseFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.DatabaseFile = name
		b.cfg.Lock.FileName = name + ".lock"
	}
}

// WithLockTiming overrides the heartbeat and staleness windows in seconds.
func WithLockTiming(heartbeat, stale int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lock.HeartbeatIntervalSeconds = heartbeat
		b.cfg.Lock.StaleThresholdSeconds = stale
	}
}

// WithoutSyncCleanup disables the startup conflict resolver.
func WithoutSyncCleanup() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.AutoCleanup = false
	}
}
