package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"filmtrack/internal/config"
	"filmtrack/internal/daemon"
	"filmtrack/internal/inventory"
	"filmtrack/internal/logging"
)

const defaultCLILogLevel = "warn"

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) logLevel(fallback string) string {
	if c.logLevelFlag != nil {
		if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
			return level
		}
	}
	return fallback
}

// newLogger writes warnings to stderr and everything at the configured level
// to the rotating log file shared with the server.
func (c *commandContext) newLogger(cmd *cobra.Command) (*slog.Logger, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return logging.New(logging.Options{
		Level:      c.logLevel(defaultCLILogLevel),
		Format:     "console",
		Console:    cmd.ErrOrStderr(),
		FilePath:   cfg.LogFilePath(),
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
}

// withDaemon starts the services for one command and stops them afterwards,
// so the lock is held only while fn runs. Stop also runs when fn panics or
// the command context is cancelled.
func (c *commandContext) withDaemon(cmd *cobra.Command, fn func(context.Context, *daemon.Daemon) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, closer, err := c.newLogger(cmd)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	d, err := daemon.New(cfg, logger, daemon.Options{})
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := d.Start(ctx); err != nil {
		return describeStartError(err)
	}
	defer func() {
		stopErr := d.Stop(context.WithoutCancel(ctx))
		if err == nil {
			err = stopErr
		}
	}()
	return fn(ctx, d)
}

// withInventory is withDaemon for commands that only need the item manager.
func (c *commandContext) withInventory(cmd *cobra.Command, fn func(context.Context, *inventory.Manager) error) error {
	return c.withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		manager, err := d.Inventory()
		if err != nil {
			return err
		}
		return describeInventoryError(fn(ctx, manager))
	})
}

func describeStartError(err error) error {
	var locked *daemon.LockedError
	if errors.As(err, &locked) {
		return fmt.Errorf("%w; stop the other filmtrack process or wait for the lock to go stale", err)
	}
	return err
}

// describeInventoryError replaces storage detail with the caller-facing
// message. The full error has already been logged by the manager.
func describeInventoryError(err error) error {
	if err == nil {
		return nil
	}
	problem := inventory.Describe(err)
	if problem.Kind == inventory.KindStorage {
		if problem.Retryable {
			return fmt.Errorf("%s (database busy, try again)", problem.Message)
		}
		return errors.New(problem.Message)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
