package syncconflict

import (
	"path/filepath"
	"regexp"
	"strings"
)

var sideSuffixes = []string{"-wal", "-shm", "-journal"}

// matcher recognizes conflict copies of one canonical file name.
type matcher struct {
	canonical string
	markers   []*regexp.Regexp
	device    *regexp.Regexp
}

// match is how a name was recognized.
type match int

const (
	matchNone match = iota
	// matchMarker names carry an explicit conflict marker or a numbered
	// duplicate suffix.
	matchMarker
	// matchDevice names only carry a host token, which a person could also
	// have typed.
	matchDevice
)

// newMatcher builds the naming rules sync clients use for duplicates of
// canonical. For "film.db" the stem and extension match case-insensitively:
//
//	film (Sam's conflicted copy 2026-01-02).db conflict marker
//	film-conflict-20260102.db                 conflict marker
//	film.sync-conflict-20260102-101500-ABC.db conflict marker
//	film (1).db, film 2.db                    numeric duplicate
//	film-DESKTOP-4F2A.db                      device suffix
//	film-DESKTOP-4F2A-2.db                    repeated device suffix
//
// The device token is case-sensitive: upper-case letters and digits with at
// least one letter, so film-archive.db and film-2025.db are not copies.
func newMatcher(canonical string) *matcher {
	ext := filepath.Ext(canonical)
	stem := foldCase(regexp.QuoteMeta(strings.TrimSuffix(canonical, ext)))
	qext := foldCase(regexp.QuoteMeta(ext))
	markers := []string{
		`^` + stem + `[ ._-]?\(.*(?i:conflict).*\)` + qext + `$`,
		`^` + stem + `[ ._-].*(?i:conflict).*` + qext + `$`,
		`^` + stem + ` ?\(\d+\)` + qext + `$`,
		`^` + stem + ` \d+` + qext + `$`,
	}
	m := &matcher{
		canonical: canonical,
		device:    regexp.MustCompile(`^` + stem + `-[A-Z0-9]*[A-Z][A-Z0-9]*(?:-[A-Z0-9]+)*` + qext + `$`),
	}
	for _, expr := range markers {
		m.markers = append(m.markers, regexp.MustCompile(expr))
	}
	return m
}

func foldCase(expr string) string {
	if expr == "" {
		return ""
	}
	return `(?i:` + expr + `)`
}

// classify reports how name was recognized as a conflict copy, and whether it
// is a side file (write-ahead log, shared memory, journal) of one.
func (m *matcher) classify(name string) (kind match, side bool) {
	base := name
	for _, suffix := range sideSuffixes {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			base = name[:len(name)-len(suffix)]
			side = true
			break
		}
	}
	if strings.EqualFold(base, m.canonical) {
		return matchNone, false
	}
	for _, re := range m.markers {
		if re.MatchString(base) {
			return matchMarker, side
		}
	}
	if m.device.MatchString(base) {
		return matchDevice, side
	}
	return matchNone, false
}

func ignored(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(strings.ToLower(pattern), lower); ok {
			return true
		}
	}
	return false
}
