package keytap

import "errors"

var (
	// ErrUnknownHandle is returned when removing a registration that
	// does not exist or was already removed.
	ErrUnknownHandle = errors.New("keytap: unknown handle")
	// ErrEngineClosed is returned by operations on a closed engine.
	ErrEngineClosed = errors.New("keytap: engine closed")
)
