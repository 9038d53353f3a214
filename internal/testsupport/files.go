package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sqliteHeader = "SQLite format 3\x00"

// WriteDataFile writes size bytes that open with the SQLite file header, as a
// stand-in for a data file or a sync client's copy of one. A non-zero mtime
// is applied to the file.
func WriteDataFile(t testing.TB, path string, size int64, mtime time.Time) {
	t.Helper()

	if size < int64(len(sqliteHeader)) {
		size = int64(len(sqliteHeader))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]byte, size)
	copy(data, sqliteHeader)
	for i := len(sqliteHeader); i < len(data); i++ {
		data[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if mtime.IsZero() {
		return
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
