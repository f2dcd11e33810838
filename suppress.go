package keytap

import (
	"time"

	"github.com/dshills/keytap/internal/key"
)

// SuppressSequence blocks a key sequence from reaching other programs.
// The spec's keys are flattened into their press order, so "ctrl+a"
// suppresses a ctrl press followed by an a press, and "a, b" the two
// taps in sequence. Prefixes typed but not completed within timeout
// are replayed; timeout zero never expires.
func (e *Engine) SuppressSequence(spec string, timeout time.Duration) error {
	steps, err := key.ParseHotkey(spec, e.backend())
	if err != nil {
		return err
	}

	var names []string
	for _, step := range steps {
		for _, c := range step {
			names = append(names, c.Name)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.startLocked(); err != nil {
		return err
	}
	e.sup.AddSequence(names, timeout)
	e.refreshBlocking()
	return nil
}

// SuppressNone drops every suppressed sequence.
func (e *Engine) SuppressNone() {
	e.sup.Clear()
	e.mu.Lock()
	e.refreshBlocking()
	e.mu.Unlock()
}

// ClearBindings drops every hotkey, word listener, abbreviation and
// suppressed sequence. User hooks stay registered. Configuration
// reload rebuilds bindings through this.
func (e *Engine) ClearBindings() {
	e.hotkeys.Clear()
	e.words.Clear()
	e.sup.Clear()
	e.mu.Lock()
	e.refreshBlocking()
	e.mu.Unlock()
}
