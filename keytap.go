// Package keytap hooks the system keyboard: observe every keystroke,
// register global hotkeys, suppress key sequences, expand typed
// abbreviations, and record or replay input.
//
// Most programs construct one Engine over a platform backend:
//
//	be, err := keytap.OpenBackend("auto", log)
//	eng := keytap.New(be, keytap.WithLogger(log))
//	defer eng.Close()
//
//	eng.AddHotkey("ctrl+shift+a, s", func() { ... })
//
// The zero-configuration Default engine runs on the in-memory fake
// backend until a real one is attached with SetBackend.
package keytap

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/backend"
	"github.com/dshills/keytap/internal/dispatch"
	"github.com/dshills/keytap/internal/hotkey"
	"github.com/dshills/keytap/internal/key"
	"github.com/dshills/keytap/internal/record"
	"github.com/dshills/keytap/internal/state"
	"github.com/dshills/keytap/internal/suppress"
	"github.com/dshills/keytap/internal/word"
)

// Engine ties the backend, dispatcher and feature engines together.
// All methods are safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	started bool
	closed  bool

	be       atomic.Value // beBox
	tracker  *state.Tracker
	listener *dispatch.Listener
	pool     *dispatch.Pool
	hotkeys  *hotkey.Registry
	words    *word.Engine
	sup      *suppress.Suppressor
	recorder *record.Recorder
	log      zerolog.Logger

	// core handler positions, re-flagged as suppression capability
	// comes and goes
	hotkeyHandle   dispatch.Handle
	suppressHandle dispatch.Handle

	userHooks map[HookHandle]struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine over a backend. The backend producer starts
// lazily with the first registration, or eagerly via Start.
func New(be Backend, opts ...Option) *Engine {
	e := &Engine{
		log:       zerolog.Nop(),
		userHooks: make(map[HookHandle]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.be.Store(beBox{be})

	e.tracker = state.New()
	e.sup = suppress.New(backendSender{e}, e.log)
	e.listener = dispatch.NewListener(backendDecoder{e}, e.tracker,
		dispatch.WithLogger(e.log),
		dispatch.WithSynthetic(e.sup.Replaying),
	)
	e.pool = dispatch.NewPool(
		dispatch.WithPoolLogger(e.log),
		dispatch.WithPoolMetrics(e.listener.Metrics()),
	)
	e.hotkeys = hotkey.NewRegistry(e.tracker, e.pool, e.log)
	e.words = word.NewEngine(e.shiftDown, replacer{e}, e.pool, e.log)
	e.recorder = record.NewRecorder()

	// Fixed handler order: the recorder sees everything first, then
	// hotkeys, the word engine, and last the suppression verdict.
	e.listener.AddHandler(e.recorder.Handler, false)
	e.hotkeyHandle = e.listener.AddHandler(e.hotkeys.Handler, false)
	e.listener.AddHandler(e.words.Handler, false)
	e.suppressHandle = e.listener.AddHandler(e.suppressed, false)

	return e
}

// OpenBackend builds the named platform backend: "auto", "hook",
// "evdev", "terminal" or "fake".
func OpenBackend(kind string, log zerolog.Logger) (Backend, error) {
	return backend.Open(kind, log)
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the shared engine, lazily built over the in-memory
// fake backend. Attach a real backend with SetBackend.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New(backend.NewFake(zerolog.Nop()))
	})
	return defaultEngine
}

// beBox wraps the backend interface so atomic.Value accepts stores of
// differing concrete backend types.
type beBox struct{ be Backend }

// backend returns the active backend.
func (e *Engine) backend() Backend {
	return e.be.Load().(beBox).be
}

// SetBackend swaps the platform backend. A running producer is stopped
// and the replacement started in its place.
func (e *Engine) SetBackend(be Backend) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}

	old := e.backend()
	if e.started {
		if err := old.Stop(); err != nil {
			return err
		}
	}
	e.be.Store(beBox{be})
	if e.started {
		return be.Start(e.listener.Feed)
	}
	return nil
}

// Start begins capturing. Registrations call it implicitly; calling it
// again is a no-op.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked()
}

func (e *Engine) startLocked() error {
	if e.closed {
		return ErrEngineClosed
	}
	if e.started {
		return nil
	}
	e.listener.Start()
	e.pool.Start()
	if err := e.backend().Start(e.listener.Feed); err != nil {
		return err
	}
	e.started = true
	return nil
}

// Close stops the backend producer, the dispatcher and the callback
// pool. The engine cannot be restarted.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var err error
	if e.started {
		err = e.backend().Stop()
		e.started = false
	}
	e.listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if perr := e.pool.Stop(ctx); perr != nil && !errors.Is(perr, dispatch.ErrPoolNotRunning) && err == nil {
		err = perr
	}
	return err
}

// Metrics exposes the dispatch counters.
func (e *Engine) Metrics() *dispatch.Metrics {
	return e.listener.Metrics()
}

// suppressed is the last core handler: it turns the suppressor's allow
// verdict into the chain's stop decision.
func (e *Engine) suppressed(ev *key.Event) bool {
	return !e.sup.Allow(ev)
}

// refreshBlocking flips the core handlers between the async pump and
// synchronous dispatch, depending on whether anything can currently
// suppress.
func (e *Engine) refreshBlocking() {
	_ = e.listener.SetBlocking(e.hotkeyHandle, e.hotkeys.HasBlocking())
	_ = e.listener.SetBlocking(e.suppressHandle, e.sup.Active())
}

func (e *Engine) shiftDown() bool {
	return e.tracker.IsPressedName("shift")
}

// backendDecoder forwards code resolution to the active backend.
type backendDecoder struct{ e *Engine }

func (d backendDecoder) Decode(code key.Code) ([]string, bool) {
	return d.e.backend().Decode(code)
}

// backendSender is the suppressor's replay path.
type backendSender struct{ e *Engine }

func (s backendSender) Press(code key.Code) error   { return s.e.backend().Press(code) }
func (s backendSender) Release(code key.Code) error { return s.e.backend().Release(code) }

// replacer performs abbreviation replacement under the replay guard.
type replacer struct{ e *Engine }

func (r replacer) Replace(backspaces int, text string) error {
	e := r.e
	var err error
	e.sup.WithReplay(func() {
		for i := 0; i < backspaces; i++ {
			if err = e.tap("backspace"); err != nil {
				return
			}
		}
		err = e.writeRunes(text, 0)
	})
	return err
}
