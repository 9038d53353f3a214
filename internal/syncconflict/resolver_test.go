package syncconflict_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filmtrack/internal/syncconflict"
	"filmtrack/internal/testsupport"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func testOptions(dir string) syncconflict.Options {
	return syncconflict.Options{
		Dir:           dir,
		CanonicalName: "film.db",
		QuarantineDir: filepath.Join(dir, ".sync-conflicts"),
		Ignore:        []string{"*backup*"},
		Protected:     []string{"film.db.lock", "film.db.lock.guard"},
		Now:           func() time.Time { return fixedNow },
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestAutoCleanupRemovesIdenticalCopy(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.db"), "same bytes", base)
	writeFile(t, filepath.Join(dir, "film-conflict-20260301.db"), "same bytes", base.Add(time.Minute))

	result := syncconflict.AutoCleanup(context.Background(), testOptions(dir))

	if len(result.Removed) != 1 || result.Removed[0].Reason != syncconflict.ReasonIdentical {
		t.Fatalf("expected identical copy removed, got %+v", result)
	}
	if exists(filepath.Join(dir, "film-conflict-20260301.db")) {
		t.Fatal("identical copy still present")
	}
	if !exists(filepath.Join(dir, "film.db")) {
		t.Fatal("canonical file must never be touched")
	}
}

func TestAutoCleanupRemovesOlderSmallerCopy(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.db"), "canonical contents", base)
	writeFile(t, filepath.Join(dir, "film (1).db"), "older", base.Add(-time.Minute))

	result := syncconflict.AutoCleanup(context.Background(), testOptions(dir))

	if len(result.Removed) != 1 || result.Removed[0].Reason != syncconflict.ReasonOlderSmaller {
		t.Fatalf("expected older copy removed, got %+v", result)
	}
	if len(result.Quarantined) != 0 {
		t.Fatalf("unexpected quarantine: %+v", result.Quarantined)
	}
}

func TestAutoCleanupQuarantinesNewerCopy(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.db"), "canonical", base)
	name := "film (Sam's conflicted copy 2026-03-01).db"
	writeFile(t, filepath.Join(dir, name), "newer edits", base.Add(time.Minute))

	result := syncconflict.AutoCleanup(context.Background(), testOptions(dir))

	if len(result.Quarantined) != 1 {
		t.Fatalf("expected one quarantined copy, got %+v", result)
	}
	want := filepath.Join(dir, ".sync-conflicts", "20260304T050607Z", name)
	if got := result.Quarantined[0].Destination; got != want {
		t.Fatalf("destination = %q, want %q", got, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read quarantined copy: %v", err)
	}
	if string(data) != "newer edits" {
		t.Fatalf("quarantined content = %q", data)
	}
	if exists(filepath.Join(dir, name)) {
		t.Fatal("conflict copy still in data dir")
	}
}

func TestAutoCleanupQuarantinesLargerOlderCopy(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.db"), "small", base)
	writeFile(t, filepath.Join(dir, "film 2.db"), "considerably larger", base.Add(-time.Minute))

	result := syncconflict.AutoCleanup(context.Background(), testOptions(dir))
	if len(result.Quarantined) != 1 || result.Quarantined[0].Reason != syncconflict.ReasonDiverged {
		t.Fatalf("expected larger copy quarantined, got %+v", result)
	}
}

func TestAutoCleanupWithoutCanonicalQuarantinesEverything(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.sync-conflict-20260301-101500-ABCDEFG.db"), "a", base)
	writeFile(t, filepath.Join(dir, "film-LAPTOP.db"), "b", base)

	result := syncconflict.AutoCleanup(context.Background(), testOptions(dir))
	if len(result.Quarantined) != 2 || len(result.Removed) != 0 {
		t.Fatalf("expected both quarantined, got %+v", result)
	}
	for _, action := range result.Quarantined {
		if action.Reason != syncconflict.ReasonNoCanonical {
			t.Fatalf("reason = %q", action.Reason)
		}
	}
}

func TestAutoCleanupQuarantinesConflictSideFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.db"), "same", base)
	writeFile(t, filepath.Join(dir, "film.db-wal"), "wal", base)
	writeFile(t, filepath.Join(dir, "film (1).db"), "same", base)
	writeFile(t, filepath.Join(dir, "film (1).db-wal"), "other wal", base)

	result := syncconflict.AutoCleanup(context.Background(), testOptions(dir))

	if len(result.Removed) != 1 || len(result.Quarantined) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Quarantined[0].Reason != syncconflict.ReasonSideFile {
		t.Fatalf("reason = %q", result.Quarantined[0].Reason)
	}
	if !exists(filepath.Join(dir, "film.db-wal")) {
		t.Fatal("canonical side file must be left alone")
	}
}

func TestAutoCleanupSkipsIgnoredAndUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.db"), "canonical", base)
	keep := []string{
		"film-BACKUP.db",
		"film.db.lock",
		"film.db.lock.guard",
		"notes.txt",
		"other-DESKTOP.db",
		"film.db-shm",
	}
	for _, name := range keep {
		writeFile(t, filepath.Join(dir, name), "x", base)
	}

	result := syncconflict.AutoCleanup(context.Background(), testOptions(dir))

	if len(result.Removed) != 0 || len(result.Quarantined) != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected nothing touched, got %+v", result)
	}
	if len(result.Ignored) != 1 || filepath.Base(result.Ignored[0]) != "film-BACKUP.db" {
		t.Fatalf("ignored = %v", result.Ignored)
	}
	for _, name := range keep {
		if !exists(filepath.Join(dir, name)) {
			t.Fatalf("%s was touched", name)
		}
	}
}

func TestScanDoesNotTouchFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.db"), "canonical", base)
	writeFile(t, filepath.Join(dir, "FILM (3).DB"), "newer", base.Add(time.Minute))

	result := syncconflict.Scan(context.Background(), testOptions(dir))

	if len(result.Planned) != 1 || result.Planned[0].Decision != syncconflict.DecisionQuarantine {
		t.Fatalf("planned = %+v", result.Planned)
	}
	if !exists(filepath.Join(dir, "FILM (3).DB")) {
		t.Fatal("scan moved a file")
	}
	if exists(filepath.Join(dir, ".sync-conflicts")) {
		t.Fatal("scan created the quarantine directory")
	}
}

func TestAutoCleanupMissingDirectoryIsQuiet(t *testing.T) {
	opts := testOptions(filepath.Join(t.TempDir(), "missing"))
	result := syncconflict.AutoCleanup(context.Background(), opts)
	if len(result.Errors) != 0 || len(result.Removed) != 0 || len(result.Quarantined) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestAutoCleanupRecordsFailures(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.db"), "canonical", base)
	writeFile(t, filepath.Join(dir, "film-PHONE.db"), "newer data", base.Add(time.Minute))

	opts := testOptions(dir)
	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, "file, not dir", base)
	opts.QuarantineDir = filepath.Join(blocker, "nested")

	result := syncconflict.AutoCleanup(context.Background(), opts)
	if len(result.Errors) != 1 {
		t.Fatalf("expected one recorded error, got %+v", result)
	}
	if !exists(filepath.Join(dir, "film-PHONE.db")) {
		t.Fatal("copy should remain after a failed quarantine")
	}
}

func TestAutoCleanupLeavesHyphenatedSiblings(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	testsupport.WriteDataFile(t, filepath.Join(dir, "film.db"), 8192, now)
	siblings := []string{"film-archive.db", "film-2025.db", "film-old.db", "film-pre-migration.db"}
	for _, name := range siblings {
		testsupport.WriteDataFile(t, filepath.Join(dir, name), 4096, now.Add(-48*time.Hour))
	}

	result := syncconflict.AutoCleanup(context.Background(), testOptions(dir))

	if len(result.Removed) != 0 || len(result.Quarantined) != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected siblings untouched, got %+v", result)
	}
	for _, name := range siblings {
		if !exists(filepath.Join(dir, name)) {
			t.Fatalf("%s was touched", name)
		}
	}
}

func TestAutoCleanupQuarantinesDeviceSuffixedCopies(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "film.db"), "canonical contents", base)
	writeFile(t, filepath.Join(dir, "film-DESKTOP-4F2A.db"), "canonical contents", base)
	writeFile(t, filepath.Join(dir, "film-LAPTOP-2.db"), "older", base.Add(-time.Minute))

	result := syncconflict.AutoCleanup(context.Background(), testOptions(dir))

	if len(result.Removed) != 0 {
		t.Fatalf("device-suffixed copies removed: %+v", result.Removed)
	}
	if len(result.Quarantined) != 2 {
		t.Fatalf("expected two quarantined copies, got %+v", result)
	}
	for _, action := range result.Quarantined {
		if action.Reason != syncconflict.ReasonDeviceSuffix {
			t.Fatalf("reason = %q", action.Reason)
		}
		if !exists(action.Destination) {
			t.Fatalf("quarantined copy missing at %s", action.Destination)
		}
	}
}
