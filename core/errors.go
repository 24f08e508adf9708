package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrConflict          = errors.New("conflict")
	ErrMethodNotAllowed  = errors.New("method not allowed")
	ErrHTTPMethod        = errors.New("http-method must be GET, POST or PUT")
	ErrChatMethodMissing = errors.New("chat method is not set")
	ErrNotImplemented    = errors.New("not implemented")
	ErrSlotFilled        = errors.New("template slot has already been filled")
	ErrUnknownSlot       = errors.New("template slot does not exist")
	ErrNoTitle           = errors.New("html document has no title")
	ErrNoContent         = errors.New("route has no html content")
)

type Severity uint8

const (
	// SeverityRecoverable errors are reported but the operation continues with degraded output.
	SeverityRecoverable Severity = iota
	// SeverityFatal errors abort the operation; the caller decides whether to exit.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityRecoverable:
		return "recoverable"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

// Error attaches a severity and the failing operation to an underlying error.
// Use errors.Is on the result to match the underlying sentinel.
type Error struct {
	Severity Severity
	Op       string
	Err      error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Recoverable wraps err as a recoverable error for the specified operation.
// Wrapping nil returns nil.
func Recoverable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Severity: SeverityRecoverable, Op: op, Err: err}
}

// Fatal wraps err as a fatal error for the specified operation.
// Wrapping nil returns nil.
func Fatal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Severity: SeverityFatal, Op: op, Err: err}
}

// IsFatal reports whether any error in err's tree is a fatal *Error.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) && e.Severity == SeverityFatal {
		return true
	}
	// errors.As stops at the first match, joined errors may hide a fatal one further down
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			if IsFatal(inner) {
				return true
			}
		}
	}
	return false
}
