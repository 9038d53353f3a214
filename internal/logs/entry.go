package logs

import (
	"encoding/json"
	"strings"
	"time"

	"filmtrack/internal/logging"
)

// Entry is one log line with the fields used for filtering pulled out.
type Entry struct {
	Raw       string
	Time      time.Time
	Level     string
	Message   string
	Component string
	EventType string
	// Structured is false for lines that did not decode as JSON.
	Structured bool
}

// Filter selects entries. Empty fields match everything.
type Filter struct {
	// MinLevel drops entries below this level (debug, info, warn, error).
	MinLevel  string
	Component string
	EventType string
}

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if !e.Structured {
		return true
	}
	if min := strings.ToLower(strings.TrimSpace(f.MinLevel)); min != "" {
		want, ok := levelRank[min]
		got, known := levelRank[strings.ToLower(e.Level)]
		if ok && known && got < want {
			return false
		}
	}
	if f.Component != "" && !strings.EqualFold(f.Component, e.Component) {
		return false
	}
	if f.EventType != "" && !strings.EqualFold(f.EventType, e.EventType) {
		return false
	}
	return true
}

func parseEntry(line string) Entry {
	entry := Entry{Raw: line}
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return entry
	}
	entry.Structured = true
	entry.Level = stringField(fields, "level")
	entry.Message = stringField(fields, "msg")
	entry.Component = stringField(fields, logging.FieldComponent)
	entry.EventType = stringField(fields, logging.FieldEventType)
	if ts := stringField(fields, "ts"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Time = parsed
		}
	}
	return entry
}

func stringField(fields map[string]any, key string) string {
	value, ok := fields[key].(string)
	if !ok {
		return ""
	}
	return value
}
