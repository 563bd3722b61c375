package news

import (
	"errors"
	"fmt"
)

// ErrRefreshInFlight is returned by Refresh when another refresh trigger has
// not completed yet. The second call does not reach the backend.
var ErrRefreshInFlight = errors.New("news: refresh already in flight")

// Kind classifies client failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindStatus
	KindDecode
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails at the HTTP boundary.
type Error struct {
	Op     string // "list" or "refresh"
	Kind   Kind
	Status int // HTTP status for KindStatus, zero otherwise
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("news %s: HTTP %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("news %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Describe turns an error into a one-line hint for the error view.
func Describe(err error) string {
	switch KindOf(err) {
	case KindNetwork:
		return "The sentiment API could not be reached."
	case KindStatus:
		return "The sentiment API answered with an error status."
	case KindDecode:
		return "The sentiment API returned a response that could not be read."
	case KindUnavailable:
		return "Too many recent failures; requests are paused briefly."
	default:
		return "An unexpected error occurred."
	}
}
