// Package state tracks the set of currently pressed keys.
//
// The dispatcher is the only writer: it applies events in delivery
// order. Other goroutines may query concurrently and get eventually
// consistent snapshots.
package state

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/keytap/internal/key"
)

// Tracker is the process-wide map of currently-down keys.
type Tracker struct {
	mu      sync.RWMutex
	pressed map[key.Code]key.Event
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		pressed: make(map[key.Code]key.Event),
	}
}

// Update applies an event to the pressed map: down inserts or
// overwrites, up removes every entry for the same key. A double is an
// immediate down+up pair and leaves nothing stuck pressed.
func (t *Tracker) Update(e *key.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Kind {
	case key.KindDown:
		t.pressed[e.Code] = *e
	case key.KindUp, key.KindDouble:
		for code, entry := range t.pressed {
			if key.SameKey(&entry, e) {
				delete(t.pressed, code)
			}
		}
	}
}

// IsPressedCode reports whether the code is currently down.
func (t *Tracker) IsPressedCode(code key.Code) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.pressed[code]
	return ok
}

// IsPressedName reports whether any pressed key carries the canonical
// name as an alias.
func (t *Tracker) IsPressedName(name string) bool {
	name = key.Normalize(name)
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.pressed {
		if e.HasName(name) {
			return true
		}
	}
	return false
}

// IsPressedStep reports whether every key of the step is down.
func (t *Tracker) IsPressedStep(step key.Step) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, choice := range step {
		if !t.choiceDownLocked(choice) {
			return false
		}
	}
	return true
}

// choiceDownLocked reports whether any pressed entry satisfies the
// choice. Caller holds at least the read lock.
func (t *Tracker) choiceDownLocked(c key.Choice) bool {
	for _, code := range c.Codes {
		if _, ok := t.pressed[code]; ok {
			return true
		}
	}
	for _, e := range t.pressed {
		if e.HasName(c.Name) {
			return true
		}
	}
	return false
}

// StepSatisfied reports whether the pressed set matches the step
// exactly: every key of the step is down and nothing outside the step
// is. Hotkey step advance uses this, so "ctrl+a, b" does not advance on
// b while ctrl is still held.
func (t *Tracker) StepSatisfied(step key.Step) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, choice := range step {
		if !t.choiceDownLocked(choice) {
			return false
		}
	}
	for _, e := range t.pressed {
		if !step.Contains(&e) {
			return false
		}
	}
	return true
}

// IsPressedSpec evaluates a compound name such as "ctrl+a": every part
// must be down. Multi-step specifications have no instantaneous
// "pressed" meaning and are rejected with key.ErrMultiStep.
func (t *Tracker) IsPressedSpec(spec string, mapper key.NameMapper) (bool, error) {
	if strings.Contains(spec, ",") && key.Normalize(spec) != "," {
		return false, fmt.Errorf("%w: %q", key.ErrMultiStep, spec)
	}
	step, err := key.ParseStep(spec, mapper)
	if err != nil {
		return false, err
	}
	return t.IsPressedStep(step), nil
}

// Snapshot returns the codes currently down.
func (t *Tracker) Snapshot() []key.Code {
	t.mu.RLock()
	defer t.mu.RUnlock()
	codes := make([]key.Code, 0, len(t.pressed))
	for code := range t.pressed {
		codes = append(codes, code)
	}
	return codes
}

// PressedEvents returns a copy of the last down-event per pressed key.
func (t *Tracker) PressedEvents() []key.Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	events := make([]key.Event, 0, len(t.pressed))
	for _, e := range t.pressed {
		events = append(events, e)
	}
	return events
}

// Clear empties the pressed map.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pressed = make(map[key.Code]key.Event)
}
