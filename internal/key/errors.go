package key

import "errors"

// Key model errors.
var (
	// ErrInvalidName indicates an unknown or malformed key name in a
	// specification. Surfaced at parse time, never deferred to match time.
	ErrInvalidName = errors.New("key: invalid key name")

	// ErrEmptySpec indicates an empty hotkey specification.
	ErrEmptySpec = errors.New("key: empty specification")

	// ErrMultiStep indicates a multi-step specification was supplied
	// where only a single chord is meaningful (e.g. a pressed-state
	// query, which has no instantaneous multi-step interpretation).
	ErrMultiStep = errors.New("key: multi-step specification not allowed here")
)
