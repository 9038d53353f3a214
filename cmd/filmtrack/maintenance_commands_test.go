package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filmtrack/internal/daemon"
	"filmtrack/internal/processlock"
	"filmtrack/internal/syncconflict"
)

func TestLockStatusFreeAfterCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	createFilm(t, env)

	out := mustRunCLI(t, env, "lock", "status")
	requireContains(t, out, "State:     free")
}

func TestCommandsReportLockedDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.dataDir, 0o755); err != nil {
		t.Fatalf("mkdir data: %v", err)
	}
	other := processlock.New(filepath.Join(env.dataDir, "film.db.lock"), processlock.Options{
		HeartbeatInterval: time.Second,
		StaleThreshold:    5 * time.Second,
		Owner:             "otherhost-4242",
	})
	result, err := other.Acquire(context.Background())
	if err != nil || !result.Acquired {
		t.Fatalf("acquire: %+v %v", result, err)
	}
	t.Cleanup(func() { _ = other.Release() })

	_, _, err = runCLI(t, env, "items", "list")
	var locked *daemon.LockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedError, got %v", err)
	}
	if locked.Owner != "otherhost-4242" {
		t.Fatalf("unexpected owner %q", locked.Owner)
	}

	out := mustRunCLI(t, env, "lock", "status")
	requireContains(t, out, "State:     held")
	requireContains(t, out, "otherhost-4242")

	if _, _, err := runCLI(t, env, "doctor"); err == nil {
		t.Fatal("expected doctor to fail while the lock is held")
	}
}

func TestDBHealthAndCheckpoint(t *testing.T) {
	env := setupCLITestEnv(t)
	filmID := createFilm(t, env)
	purchase(t, env, filmID, 2)

	out := mustRunCLI(t, env, "--json", "db", "health")
	var report daemon.HealthReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode health: %v (%s)", err, out)
	}
	if !report.Storage.IntegrityOK {
		t.Fatalf("expected integrity ok, got %q", report.Storage.Integrity)
	}
	if report.Storage.JournalMode != "wal" {
		t.Fatalf("expected wal journal, got %q", report.Storage.JournalMode)
	}
	if report.Items["in_stock"] != 2 {
		t.Fatalf("expected 2 in_stock items, got %v", report.Items)
	}

	out = mustRunCLI(t, env, "db", "health")
	requireContains(t, out, "Journal mode: wal")

	out = mustRunCLI(t, env, "db", "checkpoint")
	requireContains(t, out, "Checkpoint complete")
}

func TestSyncScanReportsWithoutTouchingFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	createFilm(t, env)

	conflict := filepath.Join(env.dataDir, "film (conflicted copy).db")
	if err := os.WriteFile(conflict, []byte("diverged"), 0o644); err != nil {
		t.Fatalf("write conflict copy: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(conflict, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	out := mustRunCLI(t, env, "--json", "sync", "scan")
	var result syncconflict.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode scan: %v", err)
	}
	if len(result.Planned) != 1 || result.Planned[0].Decision != syncconflict.DecisionQuarantine {
		t.Fatalf("unexpected plan %+v", result.Planned)
	}
	if _, err := os.Stat(conflict); err != nil {
		t.Fatalf("scan must not move files: %v", err)
	}

	// The next command start runs the cleanup for real.
	mustRunCLI(t, env, "films", "list")
	if _, err := os.Stat(conflict); !os.IsNotExist(err) {
		t.Fatalf("expected conflict copy quarantined, stat err=%v", err)
	}
	out = mustRunCLI(t, env, "sync", "scan")
	requireContains(t, out, "No conflict copies found")
}

func TestDoctorPasses(t *testing.T) {
	env := setupCLITestEnv(t)
	out := mustRunCLI(t, env, "doctor")
	requireContains(t, out, "Data directory")
	requireContains(t, out, "Lock")
}

func TestLogsShowsDaemonEvents(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "--log-level", "info", "films", "list")

	out := mustRunCLI(t, env, "logs", "--event", "daemon_started")
	requireContains(t, out, "filmtrack started")
	requireContains(t, out, "[daemon]")

	out = mustRunCLI(t, env, "logs", "--level", "error")
	if out != "" {
		t.Fatalf("expected no error records, got %q", out)
	}
}
