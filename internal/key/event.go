package key

import (
	"fmt"
	"strings"
	"time"
)

// Code identifies a physical key or button at the OS level.
// Positive values are scan codes. Negative values are reserved for
// virtual-key-only codes (media keys and similar) by backend convention.
// Zero is never a valid code.
type Code int32

// Kind is the transition type of a key event.
type Kind uint8

const (
	// KindDown is a key press.
	KindDown Kind = iota

	// KindUp is a key release.
	KindUp

	// KindDouble is a double press (mouse double-click and similar).
	// For pressed-state tracking it behaves as an immediate down+up pair.
	KindDouble
)

// String returns the serialized name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDown:
		return "down"
	case KindUp:
		return "up"
	case KindDouble:
		return "double"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// KindFromString parses a serialized kind name.
func KindFromString(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down":
		return KindDown, nil
	case "up":
		return KindUp, nil
	case "double":
		return KindDouble, nil
	default:
		return 0, fmt.Errorf("%w: event type %q", ErrInvalidName, s)
	}
}

// Raw is a key transition as delivered by a platform backend, before
// the code has been resolved to canonical names.
type Raw struct {
	// Kind is the transition type.
	Kind Kind

	// Code is the platform scan or virtual-key code.
	Code Code

	// Time is when the transition occurred, at OS precision.
	Time time.Time

	// Device identifies the originating device, if the backend knows it.
	Device string
}

// Event is a decoded key transition. It is the unit the dispatcher hands
// to handlers.
type Event struct {
	// Kind is the transition type.
	Kind Kind

	// Code is the platform scan or virtual-key code.
	Code Code

	// Names holds the canonical lowercase aliases for the key, most
	// specific first (e.g. "left shift", "shift"). Never empty after
	// decoding; unresolvable codes get the single alias "unknown".
	Names []string

	// Time is when the transition occurred.
	Time time.Time

	// Device identifies the originating device, if known.
	Device string

	// Keypad reports whether the key sits on the numeric keypad.
	Keypad bool

	// Synthetic marks input the engine itself produced: suppression
	// replay, programmatic typing, abbreviation replacement. Set when
	// the event enters the dispatcher, so the flag survives queueing.
	Synthetic bool
}

// Name returns the most specific alias, or "unknown" if the event was
// never decoded.
func (e *Event) Name() string {
	if len(e.Names) == 0 {
		return "unknown"
	}
	return e.Names[0]
}

// HasName reports whether name is one of the event's aliases.
func (e *Event) HasName(name string) bool {
	for _, n := range e.Names {
		if n == name {
			return true
		}
	}
	return false
}

// IsDown reports whether the event is a press. Doubles count as presses.
func (e *Event) IsDown() bool {
	return e.Kind == KindDown || e.Kind == KindDouble
}

// String returns a compact human-readable form, e.g. "down a (30)".
func (e *Event) String() string {
	return fmt.Sprintf("%s %s (%d)", e.Kind, e.Name(), e.Code)
}

// SameKey reports whether two events refer to the same key: they share
// a code or any alias name.
func SameKey(a, b *Event) bool {
	if a.Code != 0 && a.Code == b.Code {
		return true
	}
	for _, n := range a.Names {
		if n != "unknown" && b.HasName(n) {
			return true
		}
	}
	return false
}
