package inventory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const shotDateLayout = "2006-01-02"

// ShotLog records frames exposed on one day with one lens.
type ShotLog struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Lens  string `json:"lens,omitempty"`
}

// ShotLogs is the ordered shot history stored on an item. The manager stores
// and returns it whole; callers edit entries and persist the result with
// Update.
type ShotLogs []ShotLog

// Validate checks every entry has a positive count and a calendar date.
func (l ShotLogs) Validate() error {
	for i, entry := range l {
		if entry.Count <= 0 {
			return fmt.Errorf("shot log %d: count must be positive", i)
		}
		if _, err := time.Parse(shotDateLayout, strings.TrimSpace(entry.Date)); err != nil {
			return fmt.Errorf("shot log %d: invalid date %q", i, entry.Date)
		}
	}
	return nil
}

// normalized returns a copy of l with dates and lenses trimmed.
func (l ShotLogs) normalized() ShotLogs {
	if l == nil {
		return nil
	}
	out := make(ShotLogs, len(l))
	for i, entry := range l {
		entry.Date = strings.TrimSpace(entry.Date)
		entry.Lens = strings.TrimSpace(entry.Lens)
		out[i] = entry
	}
	return out
}

// Add returns a copy of l with entry merged in. An entry for the same date
// and lens has its count increased; otherwise entry is appended.
func (l ShotLogs) Add(entry ShotLog) ShotLogs {
	entry.Date = strings.TrimSpace(entry.Date)
	entry.Lens = strings.TrimSpace(entry.Lens)
	out := append(ShotLogs(nil), l...)
	for i := range out {
		if out[i].Date == entry.Date && strings.EqualFold(out[i].Lens, entry.Lens) {
			out[i].Count += entry.Count
			return out
		}
	}
	return append(out, entry)
}

// Total sums the frame counts.
func (l ShotLogs) Total() int {
	total := 0
	for _, entry := range l {
		total += entry.Count
	}
	return total
}

func encodeShotLogs(logs ShotLogs) (any, error) {
	if logs == nil {
		return nil, nil
	}
	data, err := json.Marshal(logs)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeShotLogs(raw string) (ShotLogs, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var logs ShotLogs
	if err := json.Unmarshal([]byte(raw), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
