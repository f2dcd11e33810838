package backend

import "errors"

var (
	// ErrNotAvailable is returned when the requested backend cannot run
	// on this platform or the requested feature is unsupported by it.
	ErrNotAvailable = errors.New("backend: not available")
	// ErrPermissionDenied is returned when the OS refuses access to the
	// input devices.
	ErrPermissionDenied = errors.New("backend: permission denied")
	// ErrAlreadyStarted is returned by Start on a running backend.
	ErrAlreadyStarted = errors.New("backend: already started")
	// ErrNotStarted is returned when an operation needs a running backend.
	ErrNotStarted = errors.New("backend: not started")
	// ErrUnknownKey is returned when a key name has no code on this layout.
	ErrUnknownKey = errors.New("backend: unknown key")
)
