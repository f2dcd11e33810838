package keytap

import (
	"github.com/dshills/keytap/internal/backend"
	"github.com/dshills/keytap/internal/dispatch"
	"github.com/dshills/keytap/internal/hotkey"
	"github.com/dshills/keytap/internal/key"
)

// Re-exported core types, so callers never import the internal tree.
type (
	// Event is one decoded key transition.
	Event = key.Event
	// Code is a platform scan or virtual-key code.
	Code = key.Code
	// Kind is the transition direction.
	Kind = key.Kind
	// Raw is an undecoded transition from a backend.
	Raw = key.Raw

	// Backend is the platform keyboard layer.
	Backend = backend.Backend

	// HookHandle identifies a Hook registration.
	HookHandle = dispatch.Handle
	// HotkeyHandle identifies an AddHotkey registration.
	HotkeyHandle = hotkey.Handle
)

// Transition kinds.
const (
	KindDown   = key.KindDown
	KindUp     = key.KindUp
	KindDouble = key.KindDouble
)

// Normalize returns the canonical form of a key name.
func Normalize(name string) string {
	return key.Normalize(name)
}
