package processlock

import (
	"errors"
	"io/fs"
	"math"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Status describes the lock file as another process would judge it.
type Status struct {
	Path      string        `json:"path"`
	Exists    bool          `json:"exists"`
	Parsable  bool          `json:"parsable"`
	Record    *Record       `json:"record,omitempty"`
	Age       time.Duration `json:"age"`
	Stale     bool          `json:"stale"`
	OwnedByUs bool          `json:"owned_by_us"`
	// OwnerRunning is set only when the record was written on this host and
	// reports whether its process still exists. Staleness is still judged
	// by mtime alone.
	OwnerRunning *bool `json:"owner_running,omitempty"`
}

// Inspect reads the lock file without modifying it.
func (m *Manager) Inspect() (Status, error) {
	status := Status{Path: m.path}
	rec, mtime, err := readRecord(m.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return status, nil
	case errors.Is(err, errUnparsable):
		status.Exists = true
		status.Age = m.now().Sub(mtime)
		status.Stale = true
		return status, nil
	case err != nil:
		return status, err
	}
	status.Exists = true
	status.Parsable = true
	status.Record = &rec
	status.Age = m.now().Sub(mtime)
	status.Stale = status.Age >= m.stale
	status.OwnedByUs = rec.Owner == m.owner && m.Held()
	status.OwnerRunning = localOwnerRunning(rec)
	return status, nil
}

func localOwnerRunning(rec Record) *bool {
	if rec.PID <= 0 || rec.PID > math.MaxInt32 {
		return nil
	}
	if rec.Owner != hostToken()+"-"+strconv.Itoa(rec.PID) {
		return nil
	}
	running, err := process.PidExists(int32(rec.PID))
	if err != nil {
		return nil
	}
	return &running
}
