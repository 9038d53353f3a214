package daemonrun_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"filmtrack/internal/daemon"
	"filmtrack/internal/daemonrun"
	"filmtrack/internal/testsupport"
)

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- daemonrun.Run(ctx, cfg, daemonrun.Options{
			LogLevel:      "error",
			StatsInterval: 10 * time.Millisecond,
			Ready:         func(*daemon.Daemon) { close(ready) },
		})
	}()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not start")
	}
	if _, err := os.Stat(cfg.LockPath()); err != nil {
		t.Fatalf("lock missing while running: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop")
	}
	if _, err := os.Stat(cfg.LockPath()); !os.IsNotExist(err) {
		t.Fatalf("lock should be released, stat err = %v", err)
	}
	if _, err := os.Stat(cfg.LogFilePath()); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
}

func TestRunReportsLockedDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	holder, err := daemon.New(cfg, nil, daemon.Options{})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := holder.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = holder.Stop(context.Background()) })

	err = daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: "error"})
	var locked *daemon.LockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedError, got %v", err)
	}
}
