package xfer

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can pick an exit status
// without matching on message text.
type Kind int

const (
	KindArgs Kind = iota + 1
	KindResolve
	KindConnect
	KindFile
	KindIO
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindArgs:
		return "args"
	case KindResolve:
		return "resolve"
	case KindConnect:
		return "connect"
	case KindFile:
		return "file"
	case KindIO:
		return "io"
	case KindResource:
		return "resource"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	ErrEmptyArgument     = errors.New("empty argument")
	ErrFailedToConnect   = errors.New("failed to connect")
	ErrNoEndpoints       = errors.New("no endpoints")
	ErrSemaphoreExists   = errors.New("semaphore name already in use")
	ErrSemaphoreNotFound = errors.New("semaphore not found")
)

// Error is the error type returned by the connector, listener and workers.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode maps the error to the client's process status.
func (e *Error) ExitCode() int {
	if e.Kind == KindConnect {
		return 2
	}
	return 1
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of err, or 0 if err carries none.
func KindOf(err error) Kind {
	var xe *Error
	if errors.As(err, &xe) {
		return xe.Kind
	}
	return 0
}

// ExitCode returns the process status for err: 0 for nil, the Error's
// code when err wraps one, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var xe *Error
	if errors.As(err, &xe) {
		return xe.ExitCode()
	}
	return 1
}
