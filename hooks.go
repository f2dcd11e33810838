package keytap

import (
	"errors"

	"github.com/dshills/keytap/internal/dispatch"
)

// Hook registers fn for every decoded event, after the built-in
// engines. Returning true stops later hooks and suppresses the event
// where the backend can. Register with blocking true if fn may ever
// return true; blocking hooks move dispatch onto the capture thread.
func (e *Engine) Hook(fn func(*Event) bool, blocking bool) (HookHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.startLocked(); err != nil {
		return HookHandle{}, err
	}

	h := e.listener.AddHandler(fn, blocking)
	e.userHooks[h] = struct{}{}
	return h, nil
}

// Unhook removes a hook registration.
func (e *Engine) Unhook(h HookHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.userHooks[h]; !ok {
		return ErrUnknownHandle
	}
	delete(e.userHooks, h)
	if err := e.listener.RemoveHandler(h); err != nil {
		if errors.Is(err, dispatch.ErrUnknownHandler) {
			return ErrUnknownHandle
		}
		return err
	}
	return nil
}

// UnhookAll removes every hook registered through Hook. The built-in
// engines stay attached.
func (e *Engine) UnhookAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for h := range e.userHooks {
		_ = e.listener.RemoveHandler(h)
	}
	e.userHooks = make(map[HookHandle]struct{})
}
