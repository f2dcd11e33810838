package backend

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/key"
)

// Backend is the platform keyboard layer. Start begins delivering raw
// transitions to emit; emit's return value is the suppression verdict
// (true means the backend should block the event from the rest of the
// OS, where it can).
type Backend interface {
	Start(emit func(key.Raw) bool) error
	Stop() error

	// Press and Release synthesize one transition of a physical key.
	Press(code key.Code) error
	Release(code key.Code) error
	// TypeUnicode produces a character that may have no key on the
	// current layout.
	TypeUnicode(r rune) error

	// MapName resolves a canonical key name to the codes producing it
	// on the current layout.
	MapName(name string) ([]key.Code, error)
	// Decode returns the names for a code, never empty, and whether
	// the code sits on the numeric keypad.
	Decode(code key.Code) (names []string, keypad bool)
}

// Open builds the named backend. Kind "auto" picks the global hook.
func Open(kind string, log zerolog.Logger) (Backend, error) {
	switch kind {
	case "", "auto", "hook":
		return NewHook(log), nil
	case "evdev":
		return newEvdev(log)
	case "terminal":
		return NewTerminal(log), nil
	case "fake":
		return NewFake(log), nil
	default:
		return nil, fmt.Errorf("%w: backend %q", ErrNotAvailable, kind)
	}
}
