package checkdigit

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrInvalidFormat        = errors.New("invalid format")
	ErrLengthExceeded       = errors.New("length exceeded")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrOutOfRange           = errors.New("position out of range")
	ErrNotInitialized       = errors.New("base value not assigned")
	ErrUnknownScheme        = errors.New("unknown scheme")
	ErrNotIssuable          = errors.New("check digit not issuable")
)

// Error carries the error kind together with the raw value that caused it.
type Error struct {
	Kind   error  // one of the Err* sentinels
	Value  string // offending input, may be empty
	Detail string // human-readable explanation
}

func (e *Error) Error() string {
	switch {
	case e.Value != "" && e.Detail != "":
		return fmt.Sprintf("checkdigit: %v %q: %s", e.Kind, e.Value, e.Detail)
	case e.Value != "":
		return fmt.Sprintf("checkdigit: %v %q", e.Kind, e.Value)
	case e.Detail != "":
		return fmt.Sprintf("checkdigit: %v: %s", e.Kind, e.Detail)
	}
	return "checkdigit: " + e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, value, format string, args ...any) *Error {
	return &Error{Kind: kind, Value: value, Detail: fmt.Sprintf(format, args...)}
}
