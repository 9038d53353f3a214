package storage_test

import (
	"context"
	"os"
	"testing"
	"time"

	"filmtrack/internal/storage"
)

func TestCheckpointTruncateEmptiesLog(t *testing.T) {
	engine := openEngine(t)
	ctx := context.Background()
	for _, name := range []string{"hp5", "tri-x", "delta"} {
		if _, err := engine.Exec(ctx, "INSERT INTO widgets (name) VALUES (?)", name); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	result, err := engine.Checkpoint(ctx, storage.CheckpointTruncate)
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if result.Busy {
		t.Fatalf("expected checkpoint to complete, got %+v", result)
	}
	if result.Mode != storage.CheckpointTruncate {
		t.Fatalf("unexpected mode %q", result.Mode)
	}
	info, err := os.Stat(engine.Path() + "-wal")
	if err == nil && info.Size() != 0 {
		t.Fatalf("expected truncated wal, size=%d", info.Size())
	}
}

func TestCheckpointRejectsUnknownMode(t *testing.T) {
	engine := openEngine(t)
	if _, err := engine.Checkpoint(context.Background(), storage.CheckpointMode("RESTART; DROP TABLE widgets")); err == nil {
		t.Fatal("expected unsupported mode error")
	}
}

func TestCheckpointTimerStartStop(t *testing.T) {
	engine := openEngine(t)
	ctx := context.Background()
	if _, err := engine.Exec(ctx, "INSERT INTO widgets (name) VALUES ('gold')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	engine.StartCheckpoints(10 * time.Millisecond)
	engine.StartCheckpoints(10 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	engine.StopCheckpoints()
	engine.StopCheckpoints()

	// Statements still run after the timer stops.
	if _, err := engine.Exec(ctx, "INSERT INTO widgets (name) VALUES ('ultramax')"); err != nil {
		t.Fatalf("insert after stop: %v", err)
	}
}
