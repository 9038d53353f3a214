package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"filmtrack/internal/config"
	"filmtrack/internal/daemon"
	"filmtrack/internal/logging"
)

const (
	defaultStatsInterval = 15 * time.Minute
	shutdownTimeout      = 30 * time.Second
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// StatsInterval sets how often usage statistics are logged.
	StatsInterval time.Duration
	// Ready is called once the daemon has started.
	Ready func(*daemon.Daemon)
}

// Run starts the filmtrack daemon and blocks until the context is cancelled
// or the process receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	sessionID := uuid.NewString()
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, closer, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		FilePath:    cfg.LogFilePath(),
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
		SessionID:   sessionID,
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	logStartupSnapshot(logger, cfg)
	pidPath := filepath.Join(cfg.Paths.LogDir, "filmtrack.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	d, err := daemon.New(cfg, logger, daemon.Options{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		var locked *daemon.LockedError
		if errors.As(err, &locked) {
			logging.WarnWithContext(logger, "data directory locked", "daemon_start_locked",
				logging.String("owner", locked.Owner),
				logging.Duration("age", locked.Age),
				logging.String(logging.FieldImpact, "daemon not started"),
				logging.String(logging.FieldErrorHint, "stop the other filmtrack process or wait for its lock to go stale"),
			)
		} else {
			logger.Error("daemon start failed", logging.Error(err))
		}
		return err
	}
	if opts.Ready != nil {
		opts.Ready(d)
	}

	interval := opts.StatsInterval
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	group, groupCtx := errgroup.WithContext(signalCtx)
	group.Go(func() error {
		reportStats(groupCtx, d, logger, interval)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})
	_ = group.Wait()

	logger.Info("filmtrack daemon shutting down")
	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(cmdCtx), shutdownTimeout)
	defer stopCancel()
	if err := d.Stop(stopCtx); err != nil {
		logger.Error("daemon stop failed", logging.Error(err))
		return err
	}
	return nil
}

// reportStats logs inventory and statement usage on a fixed interval. Failures
// are logged and the loop continues.
func reportStats(ctx context.Context, d *daemon.Daemon, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		inv, err := d.Inventory()
		if err != nil {
			return
		}
		stats, err := inv.Stats(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.WarnWithContext(logger, "inventory stats unavailable", "stats_report_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "periodic usage report skipped"),
			)
			continue
		}
		attrs := []logging.Attr{logging.String(logging.FieldEventType, "inventory_stats")}
		for status, count := range stats {
			attrs = append(attrs, logging.Int(string(status), count))
		}
		logger.Info("inventory stats", logging.Args(attrs...)...)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logStartupSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("startup snapshot",
		logging.String(logging.FieldEventType, "startup_snapshot"),
		logging.String("data_dir", cfg.Paths.DataDir),
		logging.String("database", cfg.DatabasePath()),
		logging.String("lock", cfg.LockPath()),
		logging.String("quarantine_dir", cfg.Paths.QuarantineDir),
		logging.Bool("sync_auto_cleanup", cfg.Sync.AutoCleanup),
		logging.String("synchronous", cfg.Storage.Synchronous),
		logging.Duration("checkpoint_interval", cfg.CheckpointInterval()),
		logging.Duration("lock_heartbeat", cfg.HeartbeatInterval()),
		logging.Duration("lock_stale_after", cfg.StaleThreshold()),
	)
}
