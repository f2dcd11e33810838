package dispatch

import "errors"

// Dispatch errors.
var (
	// ErrUnknownHandler indicates a removal for a handler that was
	// never registered.
	ErrUnknownHandler = errors.New("dispatch: unknown handler")

	// ErrClosed indicates the listener has been closed.
	ErrClosed = errors.New("dispatch: listener closed")

	// ErrPoolNotRunning indicates a callback was submitted to a
	// stopped pool.
	ErrPoolNotRunning = errors.New("dispatch: pool not running")

	// ErrPoolFull indicates the callback queue is at capacity.
	ErrPoolFull = errors.New("dispatch: callback queue full")
)
