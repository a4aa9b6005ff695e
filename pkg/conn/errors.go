package conn

import (
	"errors"
	"fmt"
)

// Kind classifies connection errors so callers can decide whether a
// retry makes sense.
type Kind int

const (
	// KindGeneric covers failures with no more specific class.
	KindGeneric Kind = iota
	// KindTransport covers dial, login and protocol failures.
	KindTransport
	// KindUnavailable means the requested backend kind does not exist
	// or cannot be constructed.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnavailable:
		return "unavailable"
	default:
		return "generic"
	}
}

// Error is a typed connection error.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func transportErr(op, message string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: message, Err: err}
}

// IsTransport reports whether err is a transport-class connection error.
func IsTransport(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindTransport
}

// IsUnavailable reports whether err signals a missing backend kind.
func IsUnavailable(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindUnavailable
}
