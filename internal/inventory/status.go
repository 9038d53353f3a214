package inventory

import (
	"fmt"
	"strings"
)

// Status is the lifecycle position of a film item.
type Status string

const (
	StatusInStock   Status = "in_stock"
	StatusLoaded    Status = "loaded"
	StatusShot      Status = "shot"
	StatusSentToLab Status = "sent_to_lab"
	StatusDeveloped Status = "developed"
	StatusArchived  Status = "archived"
)

var allStatuses = []Status{
	StatusInStock,
	StatusLoaded,
	StatusShot,
	StatusSentToLab,
	StatusDeveloped,
	StatusArchived,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// ParseStatus normalizes and validates a status string.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", validationf("parse status", "invalid film item status %q", value)
	}
	return status, nil
}

// linkable reports whether an item in s may be linked to a roll.
func (s Status) linkable() bool {
	return s == StatusInStock || s == StatusLoaded
}

// timestampColumn names the column stamped when an item enters s.
func (s Status) timestampColumn() string {
	switch s {
	case StatusLoaded:
		return "loaded_at"
	case StatusShot:
		return "shot_at"
	case StatusSentToLab:
		return "sent_to_lab_at"
	case StatusDeveloped:
		return "developed_at"
	case StatusArchived:
		return "archived_at"
	default:
		return ""
	}
}

func (s Status) String() string {
	return string(s)
}

func statusArgs(statuses []Status) ([]any, error) {
	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		if !status.Valid() {
			return nil, fmt.Errorf("invalid film item status %q", status)
		}
		args = append(args, string(status))
	}
	return args, nil
}
