package processlock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"filmtrack/internal/logging"
)

const (
	// DefaultHeartbeatInterval is how often the holder refreshes the lock mtime.
	DefaultHeartbeatInterval = 10 * time.Second
	// DefaultStaleThreshold is the mtime age after which a lock is presumed abandoned.
	DefaultStaleThreshold = 60 * time.Second

	guardRetryDelay = 25 * time.Millisecond
	guardTimeout    = 5 * time.Second
)

// Acquisition reasons reported in Result.Reason.
const (
	ReasonCreated         = "created"
	ReasonStaleOverride   = "stale_override"
	ReasonCorruptOverride = "corrupt_override"
	ReasonAlreadyHeld     = "already_held"
	ReasonHeld            = "held_by_other_process"
)

// Result is the outcome of Acquire. A lock held elsewhere is reported here,
// not as an error, so the caller can show the owner.
type Result struct {
	Acquired bool          `json:"acquired"`
	Owner    string        `json:"owner"`
	Reason   string        `json:"reason"`
	Age      time.Duration `json:"age"`
}

// Options configures a Manager.
type Options struct {
	HeartbeatInterval time.Duration
	StaleThreshold    time.Duration
	// Owner defaults to OwnerID().
	Owner   string
	Session string
	Now     func() time.Time
	Logger  *slog.Logger
}

// Manager owns one lock file.
type Manager struct {
	path      string
	guardPath string
	owner     string
	session   string
	heartbeat time.Duration
	stale     time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	held     bool
	stopBeat context.CancelFunc
	beatDone chan struct{}
}

// New returns a Manager for the lock file at path.
func New(path string, opts Options) *Manager {
	m := &Manager{
		path:      path,
		guardPath: path + ".guard",
		owner:     opts.Owner,
		session:   opts.Session,
		heartbeat: opts.HeartbeatInterval,
		stale:     opts.StaleThreshold,
		now:       opts.Now,
		logger:    logging.NewComponentLogger(opts.Logger, "processlock"),
	}
	if m.owner == "" {
		m.owner = OwnerID()
	}
	if m.heartbeat <= 0 {
		m.heartbeat = DefaultHeartbeatInterval
	}
	if m.stale <= 0 {
		m.stale = DefaultStaleThreshold
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Path returns the lock file location.
func (m *Manager) Path() string { return m.path }

// GuardPath returns the flock guard file location.
func (m *Manager) GuardPath() string { return m.guardPath }

// Owner returns the identifier this manager writes.
func (m *Manager) Owner() string { return m.owner }

// Held reports whether this manager currently owns the lock.
func (m *Manager) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

func (m *Manager) withGuard(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	guard := flock.New(m.guardPath)
	guardCtx, cancel := context.WithTimeout(ctx, guardTimeout)
	defer cancel()
	locked, err := guard.TryLockContext(guardCtx, guardRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock guard: %w", err)
	}
	if !locked {
		return errors.New("acquire lock guard: timed out")
	}
	defer func() { _ = guard.Unlock() }()
	return fn()
}

// Acquire takes the lock when no fresh lock exists and starts the heartbeat.
// The error return is reserved for I/O failures.
func (m *Manager) Acquire(ctx context.Context) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return Result{Acquired: true, Owner: m.owner, Reason: ReasonAlreadyHeld}, nil
	}

	var result Result
	err := m.withGuard(ctx, func() error {
		now := m.now()
		rec, mtime, readErr := readRecord(m.path)
		switch {
		case errors.Is(readErr, fs.ErrNotExist):
			result.Reason = ReasonCreated
		case errors.Is(readErr, errUnparsable):
			result.Reason = ReasonCorruptOverride
			result.Age = now.Sub(mtime)
		case readErr != nil:
			return fmt.Errorf("read lock file: %w", readErr)
		default:
			result.Age = now.Sub(mtime)
			if result.Age < m.stale {
				result.Owner = rec.Owner
				result.Reason = ReasonHeld
				return nil
			}
			result.Reason = ReasonStaleOverride
			result.Owner = rec.Owner
		}

		if err := writeRecord(m.path, m.record(now), now); err != nil {
			return err
		}
		result.Acquired = true
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if !result.Acquired {
		m.logger.Info("lock held by another process",
			logging.String(logging.FieldEventType, "lock_conflict"),
			logging.String("owner", result.Owner),
			logging.Duration("age", result.Age),
		)
		return result, nil
	}

	switch result.Reason {
	case ReasonStaleOverride:
		logging.WarnWithContext(m.logger, "stale lock overwritten", "lock_stale_override",
			logging.String("previous_owner", result.Owner),
			logging.Duration("age", result.Age),
			logging.String(logging.FieldImpact, "previous owner presumed crashed"),
			logging.String(logging.FieldErrorHint, "no action needed unless another instance is still running"),
		)
	case ReasonCorruptOverride:
		logging.WarnWithContext(m.logger, "unreadable lock file overwritten", "lock_corrupt_override",
			logging.String(logging.FieldImpact, "lock content was not a lock record"),
			logging.String(logging.FieldErrorHint, "no action needed"),
		)
	}
	result.Owner = m.owner
	m.held = true
	m.startHeartbeat()
	m.logger.Info("lock acquired",
		logging.String(logging.FieldEventType, "lock_acquired"),
		logging.String("owner", m.owner),
		logging.String("reason", result.Reason),
		logging.Time("acquired_at", m.now()),
	)
	return result, nil
}

func (m *Manager) record(now time.Time) Record {
	return Record{
		Owner:     m.owner,
		Timestamp: now.UnixMilli(),
		Session:   m.session,
		PID:       os.Getpid(),
	}
}

// Release stops the heartbeat and removes the lock file if this manager
// still owns it. Safe to call on every exit path, including when Acquire
// failed.
func (m *Manager) Release() error {
	m.stopHeartbeat()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.held {
		return nil
	}
	m.held = false

	return m.withGuard(context.Background(), func() error {
		rec, _, err := readRecord(m.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil
		case err != nil && !errors.Is(err, errUnparsable):
			return fmt.Errorf("read lock file: %w", err)
		case err == nil && rec.Owner != m.owner:
			logging.WarnWithContext(m.logger, "lock taken over by another process; leaving it in place", "lock_release_foreign",
				logging.String("owner", rec.Owner),
				logging.String(logging.FieldImpact, "another process now owns the data directory"),
			)
			return nil
		}
		if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		m.logger.Info("lock released", logging.String(logging.FieldEventType, "lock_released"))
		return nil
	})
}
