package preflight

import (
	"path/filepath"

	"filmtrack/internal/config"
)

// minFreeBytes leaves room for the write-ahead log to grow between
// checkpoints and for the truncating checkpoint itself.
const minFreeBytes = 64 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every path check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckFileWritable("Database file", cfg.DatabasePath()),
	}
	// The quarantine directory is created on demand, so its parent must be writable.
	results = append(results, CheckDirectoryAccess("Quarantine parent", filepath.Dir(cfg.Paths.QuarantineDir)))
	results = append(results, CheckFreeSpace("Free space", cfg.Paths.DataDir, minFreeBytes))
	return results
}
