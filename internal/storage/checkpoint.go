package storage

import (
	"context"
	"fmt"
	"time"

	"filmtrack/internal/logging"
)

// CheckpointMode selects how aggressively the write-ahead log is folded.
type CheckpointMode string

const (
	// CheckpointPassive copies as many frames as possible without waiting on readers.
	CheckpointPassive CheckpointMode = "PASSIVE"
	// CheckpointTruncate copies every frame and truncates the log file to zero bytes.
	CheckpointTruncate CheckpointMode = "TRUNCATE"
)

// CheckpointResult mirrors the row returned by PRAGMA wal_checkpoint.
type CheckpointResult struct {
	Mode               CheckpointMode `json:"mode"`
	Busy               bool           `json:"busy"`
	LogFrames          int            `json:"log_frames"`
	CheckpointedFrames int            `json:"checkpointed_frames"`
}

// Checkpoint folds the write-ahead log into the data file.
func (e *Engine) Checkpoint(ctx context.Context, mode CheckpointMode) (CheckpointResult, error) {
	switch mode {
	case CheckpointPassive, CheckpointTruncate:
	default:
		return CheckpointResult{}, fmt.Errorf("checkpoint: unsupported mode %q", mode)
	}
	result := CheckpointResult{Mode: mode}
	var busy int
	// wal_checkpoint returns a row, so it must go through a query.
	row := e.db.QueryRowContext(ctx, fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode))
	if err := row.Scan(&busy, &result.LogFrames, &result.CheckpointedFrames); err != nil {
		return result, fmt.Errorf("wal checkpoint %s: %w", mode, err)
	}
	result.Busy = busy != 0
	return result, nil
}

// StartCheckpoints launches the passive checkpoint timer. Calling it again
// while the timer runs is a no-op.
func (e *Engine) StartCheckpoints(interval time.Duration) {
	if interval <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopTicker != nil || e.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.stopTicker = cancel
	e.tickerDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.passiveCheckpoint(ctx)
			}
		}
	}()
	e.logger.Debug("checkpoint timer started", logging.Duration("interval", interval))
}

func (e *Engine) passiveCheckpoint(ctx context.Context) {
	result, err := e.Checkpoint(ctx, CheckpointPassive)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.WarnWithContext(e.logger, "periodic checkpoint failed", "storage_checkpoint_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "write-ahead log keeps growing until the next attempt"),
		)
		return
	}
	e.logger.Debug("periodic checkpoint",
		logging.Bool("busy", result.Busy),
		logging.Int("log_frames", result.LogFrames),
		logging.Int("checkpointed_frames", result.CheckpointedFrames),
	)
}

// StopCheckpoints stops the timer and waits for an in-flight checkpoint.
func (e *Engine) StopCheckpoints() {
	e.mu.Lock()
	cancel, done := e.stopTicker, e.tickerDone
	e.stopTicker, e.tickerDone = nil, nil
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
