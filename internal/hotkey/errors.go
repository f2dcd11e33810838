package hotkey

import "errors"

// Hotkey errors.
var (
	// ErrUnknownHotkey indicates a removal for a hotkey that was never
	// registered.
	ErrUnknownHotkey = errors.New("hotkey: unknown hotkey")
)
