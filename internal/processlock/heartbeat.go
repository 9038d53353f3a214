package processlock

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"filmtrack/internal/logging"
)

// startHeartbeat must be called with m.mu held.
func (m *Manager) startHeartbeat() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.stopBeat = cancel
	m.beatDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !m.beat() {
					return
				}
			}
		}
	}()
}

func (m *Manager) stopHeartbeat() {
	m.mu.Lock()
	cancel, done := m.stopBeat, m.beatDone
	m.stopBeat, m.beatDone = nil, nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// beat refreshes the lock mtime. It returns false when the lock now belongs
// to someone else and the heartbeat should stop.
func (m *Manager) beat() bool {
	now := m.now()
	rec, _, err := readRecord(m.path)
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, errUnparsable):
		if werr := writeRecord(m.path, m.record(now), now); werr != nil {
			logging.WarnWithContext(m.logger, "lock file rewrite failed", "lock_heartbeat_failed",
				logging.Error(werr),
				logging.String(logging.FieldImpact, "another process may take over once the lock goes stale"),
				logging.String(logging.FieldErrorHint, "check the data directory is writable"),
			)
			return true
		}
		m.logger.Info("lock file restored", logging.String(logging.FieldEventType, "lock_restored"))
		return true
	case err != nil:
		logging.WarnWithContext(m.logger, "lock heartbeat read failed", "lock_heartbeat_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "another process may take over once the lock goes stale"),
		)
		return true
	case rec.Owner != m.owner:
		logging.ErrorWithContext(m.logger, "lock taken over by another process", "lock_lost",
			logging.String("owner", rec.Owner),
			logging.String(logging.FieldImpact, "two processes may now write the data file"),
			logging.String(logging.FieldErrorHint, "stop one of the running instances"),
		)
		return false
	}
	if err := os.Chtimes(m.path, now, now); err != nil {
		logging.WarnWithContext(m.logger, "lock heartbeat failed", "lock_heartbeat_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "another process may take over once the lock goes stale"),
		)
	}
	return true
}
