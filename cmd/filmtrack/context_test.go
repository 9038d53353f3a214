package main

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"

	"filmtrack/internal/config"
	"filmtrack/internal/daemon"
)

func newTestCommandContext(t *testing.T, env *cliTestEnv) (*commandContext, *config.Config) {
	t.Helper()
	configFlag := env.configPath
	logLevel := ""
	jsonOut := false
	cctx := newCommandContext(&configFlag, &logLevel, &jsonOut)
	cfg, err := cctx.ensureConfig()
	if err != nil {
		t.Fatalf("ensureConfig: %v", err)
	}
	return cctx, cfg
}

func requireLockReleased(t *testing.T, cfg *config.Config) {
	t.Helper()
	if _, err := os.Stat(cfg.LockPath()); !os.IsNotExist(err) {
		t.Fatalf("lock file still present: %v", err)
	}
}

func TestWithDaemonReleasesLockWhenCancelled(t *testing.T) {
	env := setupCLITestEnv(t)
	cctx, cfg := newTestCommandContext(t, env)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := &cobra.Command{}
	cmd.SetContext(runCtx)
	cmd.SetErr(io.Discard)

	err := cctx.withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
		if _, err := os.Stat(cfg.LockPath()); err != nil {
			t.Fatalf("lock not held while running: %v", err)
		}
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("withDaemon error = %v, want context.Canceled", err)
	}
	requireLockReleased(t, cfg)

	mustRunCLI(t, env, "items", "stats")
}

func TestWithDaemonReleasesLockOnPanic(t *testing.T) {
	env := setupCLITestEnv(t)
	cctx, cfg := newTestCommandContext(t, env)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetErr(io.Discard)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected the panic to propagate")
			}
		}()
		_ = cctx.withDaemon(cmd, func(context.Context, *daemon.Daemon) error {
			panic("command failed")
		})
	}()
	requireLockReleased(t, cfg)
}
