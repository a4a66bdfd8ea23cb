package weather

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures. Callers switch on the kind instead of on
// concrete error types.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidInput
	KindDateOutOfRange
	KindLocationNotFound
	KindAPIQuotaExceeded
	KindNetworkTimeout
	KindDataParse
	KindInterpolation
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindDateOutOfRange:
		return "date out of range"
	case KindLocationNotFound:
		return "location not found"
	case KindAPIQuotaExceeded:
		return "api quota exceeded"
	case KindNetworkTimeout:
		return "network timeout"
	case KindDataParse:
		return "data parse"
	case KindInterpolation:
		return "interpolation"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every forecast component.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string

	// Temporary marks upstream failures worth another attempt (5xx).
	Temporary bool
	Err       error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the Err* sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == "" && t.Err == nil
}

var (
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrDateOutOfRange   = &Error{Kind: KindDateOutOfRange}
	ErrLocationNotFound = &Error{Kind: KindLocationNotFound}
	ErrAPIQuotaExceeded = &Error{Kind: KindAPIQuotaExceeded}
	ErrNetworkTimeout   = &Error{Kind: KindNetworkTimeout}
	ErrDataParse        = &Error{Kind: KindDataParse}
	ErrInterpolation    = &Error{Kind: KindInterpolation}
	ErrUpstream         = &Error{Kind: KindUpstream}
)

// NewError builds an *Error with a formatted message.
func NewError(kind ErrorKind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether another attempt against the same endpoint
// may succeed.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindNetworkTimeout, KindAPIQuotaExceeded:
		return true
	case KindUpstream:
		return e.Temporary
	default:
		return false
	}
}

// IsCallerError reports failures caused by the caller's input, including a
// date outside the provider's daily window. These are surfaced unchanged and
// never trigger a tier fallback.
func IsCallerError(err error) bool {
	switch KindOf(err) {
	case KindInvalidInput, KindLocationNotFound, KindDateOutOfRange:
		return true
	default:
		return false
	}
}
