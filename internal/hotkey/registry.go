package hotkey

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/dispatch"
	"github.com/dshills/keytap/internal/key"
)

// Handle identifies a hotkey registration.
type Handle = uuid.UUID

// Options configures one hotkey registration.
type Options struct {
	// Timeout is the maximum gap between steps. Zero disables the
	// timeout entirely.
	Timeout time.Duration

	// Blocking suppresses the final matching event so it never reaches
	// later handlers or the rest of the OS.
	Blocking bool
}

// registration couples a matcher with its callback.
type registration struct {
	id       Handle
	spec     string
	matcher  *Matcher
	callback func()
	blocking bool
}

// Registry holds every registered hotkey and feeds them the dispatched
// event stream.
type Registry struct {
	mu      sync.Mutex
	regs    []*registration
	pressed StepChecker
	pool    *dispatch.Pool
	log     zerolog.Logger
}

// NewRegistry creates a registry. Callbacks run on the pool, never on
// the dispatch goroutine.
func NewRegistry(pressed StepChecker, pool *dispatch.Pool, log zerolog.Logger) *Registry {
	return &Registry{
		pressed: pressed,
		pool:    pool,
		log:     log,
	}
}

// Add registers a hotkey over already-parsed steps and returns its
// handle. The canonical spec string is retained for removal by spec.
func (r *Registry) Add(steps []key.Step, callback func(), opts Options) Handle {
	reg := &registration{
		id:       uuid.New(),
		spec:     canonicalSpec(steps),
		matcher:  NewMatcher(steps, opts.Timeout),
		callback: callback,
		blocking: opts.Blocking,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = append(r.regs, reg)
	return reg.id
}

// Remove unregisters by handle.
func (r *Registry) Remove(id Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.regs {
		if reg.id == id {
			r.regs = append(r.regs[:i], r.regs[i+1:]...)
			return nil
		}
	}
	return ErrUnknownHotkey
}

// RemoveSpec unregisters the first hotkey whose canonical spec matches.
func (r *Registry) RemoveSpec(spec string, mapper key.NameMapper) error {
	steps, err := key.ParseHotkey(spec, mapper)
	if err != nil {
		return err
	}
	want := canonicalSpec(steps)

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.regs {
		if reg.spec == want {
			r.regs = append(r.regs[:i], r.regs[i+1:]...)
			return nil
		}
	}
	return ErrUnknownHotkey
}

// Clear drops every registration.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = nil
}

// HasBlocking reports whether any registration may suppress events.
func (r *Registry) HasBlocking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.regs {
		if reg.blocking {
			return true
		}
	}
	return false
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

// Handler is the dispatch handler: every matcher sees every down event,
// and the event is suppressed when any completed matcher was registered
// blocking.
func (r *Registry) Handler(ev *key.Event) bool {
	if !ev.IsDown() {
		return false
	}

	r.mu.Lock()
	regs := make([]*registration, len(r.regs))
	copy(regs, r.regs)
	r.mu.Unlock()

	suppress := false
	for _, reg := range regs {
		if !reg.matcher.HandleDown(ev, r.pressed) {
			continue
		}
		if reg.blocking {
			suppress = true
		}
		r.fire(reg)
	}
	return suppress
}

// fire hands the callback to the pool.
func (r *Registry) fire(reg *registration) {
	if err := r.pool.Submit(reg.callback); err != nil {
		r.log.Warn().
			Str("hotkey", reg.spec).
			Err(err).
			Msg("hotkey callback dropped")
	}
}

// canonicalSpec renders parsed steps back to their canonical string
// form, e.g. "ctrl+shift+a, s".
func canonicalSpec(steps []key.Step) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
