package chatstream

import (
	"errors"
	"fmt"
)

// ErrNoStream is reported when a successful response carries no body to read.
var ErrNoStream = errors.New("no response stream")

// ErrorKind classifies a failure reported through Handlers.OnError.
type ErrorKind int

const (
	// KindTransport is a network, read, or cancellation failure while the
	// stream was being consumed.
	KindTransport ErrorKind = iota

	// KindStatus is a non-2xx response. The body is never streamed.
	KindStatus

	// KindRemote is an error event emitted by the worker inside the stream.
	KindRemote
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindRemote:
		return "remote"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the error handed to Handlers.OnError.
type Error struct {
	Kind ErrorKind

	// Status is the HTTP status code for KindStatus errors, zero otherwise.
	Status int

	// Message is the human readable message: the worker's "error" field when
	// it sent one, a fallback otherwise.
	Message string

	// Err is the underlying cause for KindTransport errors.
	Err error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func statusFallback(status int) string {
	return fmt.Sprintf("request failed with status %d", status)
}

const remoteFallback = "stream reported an error"
