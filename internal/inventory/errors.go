package inventory

import (
	"errors"
	"fmt"

	"filmtrack/internal/storage"
)

// Kind classifies an inventory failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindStorage    Kind = "storage"
)

// Error is returned by every Manager operation that fails.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	// RollID names the conflicting roll for KindConflict errors.
	RollID int64
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorKind satisfies the classifier interface used by callers that map
// errors onto exit codes or response types.
func (e *Error) ErrorKind() string {
	if e == nil {
		return ""
	}
	return string(e.Kind)
}

func validationf(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

func conflictf(op string, rollID int64, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, RollID: rollID, Message: fmt.Sprintf(format, args...)}
}

// wrapStorage marks err as a storage failure unless it already carries a kind.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Kind: KindStorage, Op: op, Message: "storage operation failed", Err: err}
}

// KindOf returns the kind carried by err. Unclassified errors are storage
// failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Problem is the boundary form of an error.
type Problem struct {
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	RollID    int64  `json:"roll_id,omitempty"`
	Retryable bool   `json:"retryable"`
}

// Describe converts err into a Problem. Storage failures keep a generic
// message; the wrapped engine error stays in the logs.
func Describe(err error) Problem {
	if err == nil {
		return Problem{}
	}
	var e *Error
	if !errors.As(err, &e) {
		return Problem{Kind: KindStorage, Message: "storage operation failed", Retryable: storage.IsBusy(err)}
	}
	problem := Problem{Kind: e.Kind, Message: e.Message, RollID: e.RollID}
	if e.Kind == KindStorage {
		problem.Retryable = storage.IsBusy(e.Err)
	}
	return problem
}
