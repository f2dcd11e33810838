package keytap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dshills/keytap/internal/hotkey"
	"github.com/dshills/keytap/internal/key"
)

// HotkeyOption configures one hotkey registration.
type HotkeyOption func(*hotkey.Options)

// WithTimeout bounds the gap between steps of a multi-step hotkey.
// Zero, the default, waits forever.
func WithTimeout(d time.Duration) HotkeyOption {
	return func(o *hotkey.Options) { o.Timeout = d }
}

// Blocking suppresses the final matching keystroke so it never reaches
// other programs.
func Blocking() HotkeyOption {
	return func(o *hotkey.Options) { o.Blocking = true }
}

// AddHotkey binds fn to a key spec such as "ctrl+shift+a" or the
// multi-step "ctrl+a, b". The callback runs off the capture thread.
func (e *Engine) AddHotkey(spec string, fn func(), opts ...HotkeyOption) (HotkeyHandle, error) {
	steps, err := key.ParseHotkey(spec, e.backend())
	if err != nil {
		return HotkeyHandle{}, err
	}

	var o hotkey.Options
	for _, opt := range opts {
		opt(&o)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.startLocked(); err != nil {
		return HotkeyHandle{}, err
	}
	h := e.hotkeys.Add(steps, fn, o)
	e.refreshBlocking()
	return h, nil
}

// RemoveHotkey unregisters by handle.
func (e *Engine) RemoveHotkey(h HotkeyHandle) error {
	err := e.hotkeys.Remove(h)
	if errors.Is(err, hotkey.ErrUnknownHotkey) {
		return ErrUnknownHandle
	}
	e.mu.Lock()
	e.refreshBlocking()
	e.mu.Unlock()
	return err
}

// RemoveHotkeySpec unregisters the first hotkey matching spec, however
// it was spelled at registration.
func (e *Engine) RemoveHotkeySpec(spec string) error {
	err := e.hotkeys.RemoveSpec(spec, e.backend())
	if errors.Is(err, hotkey.ErrUnknownHotkey) {
		return ErrUnknownHandle
	}
	e.mu.Lock()
	e.refreshBlocking()
	e.mu.Unlock()
	return err
}

// IsPressed reports whether a key or chord is currently held. A
// multi-step spec is an error.
func (e *Engine) IsPressed(spec string) (bool, error) {
	return e.tracker.IsPressedSpec(spec, e.backend())
}

// Wait blocks until combo is pressed or ctx is done.
func (e *Engine) Wait(ctx context.Context, combo string) error {
	done := make(chan struct{})
	var once sync.Once
	h, err := e.AddHotkey(combo, func() { once.Do(func() { close(done) }) })
	if err != nil {
		return err
	}
	defer e.RemoveHotkey(h)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
