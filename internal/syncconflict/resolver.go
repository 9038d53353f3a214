// Package syncconflict removes or quarantines the duplicate data files cloud
// sync clients create when they detect concurrent edits.
//
// It runs once at startup before the data file is opened. Every per-file
// failure is logged and recorded, never returned, so one odd name cannot
// block startup. Binary SQLite files are never merged: a copy with an explicit
// conflict marker is removed only when it is byte-identical to the canonical
// file or strictly older and no larger. Everything else, including every
// name recognized only by a device suffix, is moved aside into the
// quarantine directory.
package syncconflict

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filmtrack/internal/config"
	"filmtrack/internal/fileutil"
	"filmtrack/internal/logging"
)

// Decision is what happens to a conflict copy.
type Decision string

const (
	DecisionRemove     Decision = "remove"
	DecisionQuarantine Decision = "quarantine"
)

// Reasons attached to decisions.
const (
	ReasonIdentical     = "identical to canonical file"
	ReasonOlderSmaller  = "older and not larger than canonical file"
	ReasonDiverged      = "newer or larger than canonical file"
	ReasonNoCanonical   = "canonical file missing"
	ReasonSideFile      = "side file of a conflict copy"
	ReasonCompareFailed = "comparison failed"
	ReasonDeviceSuffix  = "device-suffixed name kept for review"
)

// Options configures a scan.
type Options struct {
	Dir           string
	CanonicalName string
	QuarantineDir string
	// Ignore holds glob patterns (matched case-insensitively against the
	// base name) for files that must never be touched.
	Ignore []string
	// Protected names are skipped outright, e.g. the lock and guard files.
	Protected []string
	Now       func() time.Time
	Logger    *slog.Logger
}

// OptionsFromConfig maps config onto Options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Dir:           cfg.Paths.DataDir,
		CanonicalName: cfg.Paths.DatabaseFile,
		QuarantineDir: cfg.Paths.QuarantineDir,
		Ignore:        cfg.Sync.IgnorePatterns,
		Protected:     []string{cfg.Lock.FileName, cfg.Lock.FileName + ".guard"},
		Logger:        logger,
	}
}

// Action describes one conflict copy and what was (or would be) done.
type Action struct {
	Path        string   `json:"path"`
	Decision    Decision `json:"decision"`
	Reason      string   `json:"reason"`
	Destination string   `json:"destination,omitempty"`
}

// FileError pairs a path with the error met while handling it.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result reports a scan or cleanup.
type Result struct {
	Removed     []Action    `json:"removed,omitempty"`
	Quarantined []Action    `json:"quarantined,omitempty"`
	Planned     []Action    `json:"planned,omitempty"`
	Ignored     []string    `json:"ignored,omitempty"`
	Errors      []FileError `json:"errors,omitempty"`
}

// Scan reports what AutoCleanup would do without touching any file.
func Scan(ctx context.Context, opts Options) Result {
	return run(ctx, opts, true)
}

// AutoCleanup resolves every conflict copy in opts.Dir.
func AutoCleanup(ctx context.Context, opts Options) Result {
	return run(ctx, opts, false)
}

func run(ctx context.Context, opts Options, dryRun bool) Result {
	logger := logging.NewComponentLogger(opts.Logger, "syncconflict")
	result := Result{}

	dir := strings.TrimSpace(opts.Dir)
	if dir == "" || strings.TrimSpace(opts.CanonicalName) == "" {
		return result
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, FileError{Path: dir, Error: err.Error()})
			logging.WarnWithContext(logger, "conflict scan skipped", "sync_conflict_scan_failed",
				logging.String(logging.FieldPath, dir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "conflict copies left in place"),
				logging.String(logging.FieldErrorHint, "check data_dir permissions"),
			)
		}
		return result
	}

	canonicalPath := filepath.Join(dir, opts.CanonicalName)
	canonical, canonicalErr := os.Stat(canonicalPath)
	hasCanonical := canonicalErr == nil && canonical.Mode().IsRegular()

	protected := make(map[string]struct{}, len(opts.Protected))
	for _, name := range opts.Protected {
		protected[strings.ToLower(name)] = struct{}{}
	}
	m := newMatcher(opts.CanonicalName)
	batch := filepath.Join(opts.QuarantineDir, now().UTC().Format("20060102T150405Z"))

	for _, entry := range entries {
		if ctx.Err() != nil {
			logger.Info("conflict scan interrupted", logging.Error(ctx.Err()))
			return result
		}
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if _, ok := protected[strings.ToLower(name)]; ok {
			continue
		}
		kind, side := m.classify(name)
		if kind == matchNone {
			continue
		}
		path := filepath.Join(dir, name)
		if ignored(name, opts.Ignore) {
			result.Ignored = append(result.Ignored, path)
			continue
		}

		action := Action{Path: path}
		switch {
		case side:
			action.Decision, action.Reason = DecisionQuarantine, ReasonSideFile
		case !hasCanonical:
			action.Decision, action.Reason = DecisionQuarantine, ReasonNoCanonical
		case kind == matchDevice:
			action.Decision, action.Reason = DecisionQuarantine, ReasonDeviceSuffix
		default:
			action.Decision, action.Reason = decide(canonicalPath, canonical, path, entry)
		}
		if action.Decision == DecisionQuarantine {
			action.Destination = filepath.Join(batch, name)
		}

		if dryRun {
			result.Planned = append(result.Planned, action)
			continue
		}
		apply(logger, &result, action)
	}

	if !dryRun && (len(result.Removed) > 0 || len(result.Quarantined) > 0) {
		logger.Info("conflict copies resolved",
			logging.String(logging.FieldEventType, "sync_conflict_summary"),
			logging.Int("removed", len(result.Removed)),
			logging.Int("quarantined", len(result.Quarantined)),
			logging.Int("errors", len(result.Errors)),
		)
	}
	return result
}

func decide(canonicalPath string, canonical os.FileInfo, path string, entry os.DirEntry) (Decision, string) {
	same, err := fileutil.SameContent(canonicalPath, path)
	if err != nil {
		return DecisionQuarantine, ReasonCompareFailed
	}
	if same {
		return DecisionRemove, ReasonIdentical
	}
	info, err := entry.Info()
	if err != nil {
		return DecisionQuarantine, ReasonCompareFailed
	}
	if info.ModTime().Before(canonical.ModTime()) && info.Size() <= canonical.Size() {
		return DecisionRemove, ReasonOlderSmaller
	}
	return DecisionQuarantine, ReasonDiverged
}

func apply(logger *slog.Logger, result *Result, action Action) {
	var err error
	switch action.Decision {
	case DecisionRemove:
		err = os.Remove(action.Path)
	case DecisionQuarantine:
		err = quarantine(action)
	}
	if err != nil {
		result.Errors = append(result.Errors, FileError{Path: action.Path, Error: err.Error()})
		logging.WarnWithContext(logger, "conflict copy left in place", "sync_conflict_failed",
			logging.String(logging.FieldPath, action.Path),
			logging.String("decision", string(action.Decision)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "duplicate file remains beside the data file"),
			logging.String(logging.FieldErrorHint, "move or delete the file manually"),
		)
		return
	}
	switch action.Decision {
	case DecisionRemove:
		result.Removed = append(result.Removed, action)
		logger.Info("conflict copy removed",
			logging.String(logging.FieldEventType, "sync_conflict_removed"),
			logging.String(logging.FieldPath, action.Path),
			logging.String("reason", action.Reason),
		)
	case DecisionQuarantine:
		result.Quarantined = append(result.Quarantined, action)
		logger.Info("conflict copy quarantined",
			logging.String(logging.FieldEventType, "sync_conflict_quarantined"),
			logging.String(logging.FieldPath, action.Path),
			logging.String("destination", action.Destination),
			logging.String("reason", action.Reason),
		)
	}
}

func quarantine(action Action) error {
	if err := os.MkdirAll(filepath.Dir(action.Destination), 0o755); err != nil {
		return fmt.Errorf("create quarantine directory: %w", err)
	}
	if _, err := os.Stat(action.Destination); err == nil {
		return fmt.Errorf("quarantine destination %s already exists", action.Destination)
	}
	return fileutil.MoveFile(action.Path, action.Destination)
}
