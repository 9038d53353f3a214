package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"filmtrack/internal/config"
	"filmtrack/internal/logging"
	"filmtrack/internal/preflight"
)

var (
	// ErrNotWritable is returned by Open when the data file cannot be written.
	ErrNotWritable = errors.New("data file is not writable")
	// ErrDurabilityMode is returned by Open when write-ahead logging cannot be enabled.
	ErrDurabilityMode = errors.New("write-ahead log mode unavailable")
)

// Options configures Open.
type Options struct {
	Path                   string
	Synchronous            string
	BusyTimeout            time.Duration
	CacheSizeKiB           int
	MmapSizeBytes          int64
	PageSize               int
	WALAutocheckpointPages int
	Logger                 *slog.Logger
}

// OptionsFromConfig maps the [storage] section onto Options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Path:                   cfg.DatabasePath(),
		Synchronous:            cfg.Storage.Synchronous,
		BusyTimeout:            time.Duration(cfg.Storage.BusyTimeoutMS) * time.Millisecond,
		CacheSizeKiB:           cfg.Storage.CacheSizeKiB,
		MmapSizeBytes:          cfg.Storage.MmapSizeBytes,
		PageSize:               cfg.Storage.PageSize,
		WALAutocheckpointPages: cfg.Storage.WALAutocheckpointPages,
		Logger:                 logger,
	}
}

// Engine wraps the single SQLite connection used by the process.
type Engine struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	mu         sync.Mutex
	stopTicker context.CancelFunc
	tickerDone chan struct{}
	closed     bool
}

// Open validates the path, connects, and applies durability settings.
// An unwritable path or a refused journal mode is fatal; every other
// tuning pragma that fails is logged and skipped.
func Open(ctx context.Context, opts Options) (*Engine, error) {
	logger := logging.NewComponentLogger(opts.Logger, "storage")
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("storage: path is required")
	}
	if check := preflight.CheckFileWritable("data file", opts.Path); !check.Passed {
		return nil, fmt.Errorf("%w: %s", ErrNotWritable, check.Detail)
	}

	db, err := sql.Open("sqlite", buildDSN(opts))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps per-connection pragmas in force and serializes
	// every statement issued by this process.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	engine := &Engine{db: db, path: opts.Path, logger: logger}
	if err := engine.applyPragmas(ctx, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("data file opened",
		logging.String(logging.FieldEventType, "storage_opened"),
		logging.String(logging.FieldPath, opts.Path),
	)
	return engine, nil
}

func buildDSN(opts Options) string {
	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	// Transactions take the write lock at BEGIN so a read inside a
	// transaction never has to upgrade mid-flight.
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_txlock=immediate",
		opts.Path, busy.Milliseconds())
}

func (e *Engine) applyPragmas(ctx context.Context, opts Options) error {
	// page_size only takes effect before the database leaves rollback mode.
	if opts.PageSize > 0 {
		e.tune(ctx, fmt.Sprintf("PRAGMA page_size = %d", opts.PageSize))
	}

	var mode string
	if err := e.db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		return fmt.Errorf("%w: %v", ErrDurabilityMode, err)
	}
	if !strings.EqualFold(mode, "wal") {
		return fmt.Errorf("%w: engine reported journal_mode=%s", ErrDurabilityMode, mode)
	}

	tuning := []string{
		"PRAGMA locking_mode = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	if syncMode := strings.TrimSpace(opts.Synchronous); syncMode != "" {
		tuning = append(tuning, "PRAGMA synchronous = "+syncMode)
	}
	if opts.CacheSizeKiB > 0 {
		tuning = append(tuning, fmt.Sprintf("PRAGMA cache_size = -%d", opts.CacheSizeKiB))
	}
	if opts.MmapSizeBytes > 0 {
		tuning = append(tuning, fmt.Sprintf("PRAGMA mmap_size = %d", opts.MmapSizeBytes))
	}
	if opts.WALAutocheckpointPages > 0 {
		tuning = append(tuning, fmt.Sprintf("PRAGMA wal_autocheckpoint = %d", opts.WALAutocheckpointPages))
	}
	for _, pragma := range tuning {
		e.tune(ctx, pragma)
	}
	return nil
}

func (e *Engine) tune(ctx context.Context, pragma string) {
	if _, err := e.db.ExecContext(ctx, pragma); err != nil {
		logging.WarnWithContext(e.logger, "pragma not applied", "storage_pragma_failed",
			logging.String("pragma", pragma),
			logging.Error(err),
			logging.String(logging.FieldImpact, "database runs with engine default for this setting"),
			logging.String(logging.FieldErrorHint, "check the [storage] section of the config"),
		)
	}
}

// Path returns the data file location.
func (e *Engine) Path() string {
	return e.path
}

// DB exposes the underlying handle for statement preparation.
func (e *Engine) DB() *sql.DB {
	return e.db
}

// Close stops the checkpoint timer, folds the write-ahead log into the data
// file, and closes the connection. Safe to call more than once.
func (e *Engine) Close(ctx context.Context) error {
	if e == nil || e.db == nil {
		return nil
	}
	e.StopCheckpoints()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	if result, err := e.Checkpoint(ctx, CheckpointTruncate); err != nil {
		logging.WarnWithContext(e.logger, "final checkpoint failed", "storage_final_checkpoint_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "write-ahead log left beside the data file until next open"),
		)
	} else if result.Busy {
		logging.WarnWithContext(e.logger, "final checkpoint incomplete", "storage_final_checkpoint_busy",
			logging.Int("log_frames", result.LogFrames),
			logging.Int("checkpointed_frames", result.CheckpointedFrames),
			logging.String(logging.FieldImpact, "write-ahead log left beside the data file until next open"),
		)
	}
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("close sqlite db: %w", err)
	}
	e.logger.Info("data file closed", logging.String(logging.FieldEventType, "storage_closed"))
	return nil
}
