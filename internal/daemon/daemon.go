package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"filmtrack/internal/config"
	"filmtrack/internal/inventory"
	"filmtrack/internal/logging"
	"filmtrack/internal/processlock"
	"filmtrack/internal/stmtcache"
	"filmtrack/internal/storage"
	"filmtrack/internal/syncconflict"
)

// ErrNotRunning is returned by accessors used before Start or after Stop.
var ErrNotRunning = errors.New("daemon is not running")

// LockedError reports that another process holds the data directory.
type LockedError struct {
	Path   string
	Owner  string
	Reason string
	Age    time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("data directory is in use by %s (lock %s, refreshed %s ago)",
		e.Owner, e.Path, e.Age.Round(time.Second))
}

// Options configures a Daemon.
type Options struct {
	SessionID string
	Now       func() time.Time
}

// Daemon owns the services for one data directory.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	opts   Options

	lock *processlock.Manager

	mu        sync.Mutex
	engine    *storage.Engine
	stmts     *stmtcache.Registry
	inventory *inventory.Manager
	conflicts syncconflict.Result
	lockInfo  processlock.Result
	running   atomic.Bool
}

// New constructs a daemon. Nothing is opened until Start.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	lock := processlock.New(cfg.LockPath(), processlock.Options{
		HeartbeatInterval: cfg.HeartbeatInterval(),
		StaleThreshold:    cfg.StaleThreshold(),
		Session:           opts.SessionID,
		Now:               opts.Now,
		Logger:            logger,
	})
	return &Daemon{cfg: cfg, logger: logger, opts: opts, lock: lock}, nil
}

// Start brings the services up. A lock held by a live process is returned as
// *LockedError.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	if d.cfg.Sync.AutoCleanup {
		d.conflicts = syncconflict.AutoCleanup(ctx, syncconflict.OptionsFromConfig(d.cfg, d.logger))
	}

	lockResult, err := d.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !lockResult.Acquired {
		return &LockedError{Path: d.lock.Path(), Owner: lockResult.Owner, Reason: lockResult.Reason, Age: lockResult.Age}
	}
	d.lockInfo = lockResult

	engine, err := storage.Open(ctx, storage.OptionsFromConfig(d.cfg, d.logger))
	if err != nil {
		d.releaseLock()
		return err
	}
	if err := engine.EnsureSchema(ctx, inventory.Schema()); err != nil {
		_ = engine.Close(context.WithoutCancel(ctx))
		d.releaseLock()
		return err
	}

	stmts := stmtcache.New(engine.DB(), d.logger)
	invOpts := inventory.OptionsFromConfig(d.cfg, d.logger)
	invOpts.Now = d.opts.Now
	manager, err := inventory.New(engine, stmts, invOpts)
	if err != nil {
		stmts.Close()
		_ = engine.Close(context.WithoutCancel(ctx))
		d.releaseLock()
		return err
	}

	engine.StartCheckpoints(d.cfg.CheckpointInterval())
	d.engine, d.stmts, d.inventory = engine, stmts, manager
	d.running.Store(true)
	d.logger.Info("filmtrack started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("database", engine.Path()),
		logging.String("lock", d.lock.Path()),
		logging.String("lock_reason", lockResult.Reason),
		logging.Int("conflicts_removed", len(d.conflicts.Removed)),
		logging.Int("conflicts_quarantined", len(d.conflicts.Quarantined)),
	)
	return nil
}

// Stop tears the services down in reverse order: checkpoint timer, statement
// cache, engine (with its final truncating checkpoint), then the lock.
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return nil
	}
	d.running.Store(false)

	var errs []error
	d.engine.StopCheckpoints()
	d.stmts.LogStats()
	d.stmts.Close()
	if err := d.engine.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := d.lock.Release(); err != nil {
		errs = append(errs, fmt.Errorf("release lock: %w", err))
	}
	d.engine, d.stmts, d.inventory = nil, nil, nil
	d.logger.Info("filmtrack stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
	return errors.Join(errs...)
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Release(); err != nil {
		logging.WarnWithContext(d.logger, "lock release failed", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next start waits for the lock to go stale"),
			logging.String(logging.FieldErrorHint, "remove the lock file once no filmtrack process is running"),
		)
	}
}

// Running reports whether Start succeeded and Stop has not run.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Inventory returns the lifecycle manager.
func (d *Daemon) Inventory() (*inventory.Manager, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inventory == nil {
		return nil, ErrNotRunning
	}
	return d.inventory, nil
}

// Conflicts returns what the startup resolver did.
func (d *Daemon) Conflicts() syncconflict.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conflicts
}

// Checkpoint runs an on-demand truncating checkpoint.
func (d *Daemon) Checkpoint(ctx context.Context) (storage.CheckpointResult, error) {
	d.mu.Lock()
	engine := d.engine
	d.mu.Unlock()
	if engine == nil {
		return storage.CheckpointResult{}, ErrNotRunning
	}
	result, err := engine.Checkpoint(ctx, storage.CheckpointTruncate)
	if err != nil {
		return result, err
	}
	d.logger.Info("checkpoint complete",
		logging.String(logging.FieldEventType, "checkpoint_on_demand"),
		logging.Bool("busy", result.Busy),
		logging.Int("log_frames", result.LogFrames),
		logging.Int("checkpointed_frames", result.CheckpointedFrames),
	)
	return result, nil
}
