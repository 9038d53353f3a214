package processlock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/renameio/v2"

	"filmtrack/internal/textutil"
)

// Record is the content of the lock file.
type Record struct {
	Owner string `json:"owner"`
	// Timestamp is the acquisition time in Unix milliseconds.
	Timestamp int64  `json:"timestamp"`
	Session   string `json:"session,omitempty"`
	PID       int    `json:"pid,omitempty"`
}

// AcquiredAt converts Timestamp to a time.
func (r Record) AcquiredAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// OwnerID returns the identifier this process writes into the lock file.
func OwnerID() string {
	return hostToken() + "-" + strconv.Itoa(os.Getpid())
}

func hostToken() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return textutil.SanitizeToken(host)
}

var errUnparsable = errors.New("lock file content is not a lock record")

// readRecord returns the record and file mtime. A file that exists but does
// not decode yields errUnparsable alongside a valid mtime.
func readRecord(path string) (Record, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Record{}, time.Time{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, info.ModTime(), err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil || rec.Owner == "" {
		return Record{}, info.ModTime(), errUnparsable
	}
	return rec, info.ModTime(), nil
}

// writeRecord replaces the lock file atomically and stamps its mtime.
func writeRecord(path string, rec Record, now time.Time) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode lock record: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("stamp lock file: %w", err)
	}
	return nil
}
