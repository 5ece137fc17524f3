package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport signals a network or HTTP failure reported by the transport.
	ErrTransport = errors.New("transport error")
	// ErrInvalidResponse signals a response missing a required field or malformed.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrCancelled is returned by Wait on an operation that was cancelled.
	// Completion callbacks never receive it.
	ErrCancelled = errors.New("operation cancelled")
)

// Kind is the closed set of error kinds surfaced by workflows.
type Kind int

// Error kinds.
const (
	KindTransport Kind = iota + 1
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindInvalidResponse:
		return ErrInvalidResponse
	default:
		return nil
	}
}

// Error is a workflow failure with its kind and context.
// Op names the request that failed, Field the missing or malformed field.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Field != "" {
		msg += " (field " + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying error to errors.Is/As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewTransportError wraps an error returned by the transport.
func NewTransportError(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// NewInvalidResponse reports a missing or malformed response field.
func NewInvalidResponse(op, field string, err error) error {
	return &Error{Kind: KindInvalidResponse, Op: op, Field: field, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not a workflow error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
