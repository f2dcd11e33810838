package dispatch

import (
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/key"
	"github.com/dshills/keytap/internal/state"
)

// Handler observes one decoded event. Returning true stops propagation
// to later handlers and asks the backend to swallow the physical event.
type Handler func(*key.Event) bool

// Handle identifies a registered handler.
type Handle = uuid.UUID

// Decoder resolves a platform code to its canonical alias names and
// keypad flag. Implemented by the platform backend.
type Decoder interface {
	Decode(code key.Code) (names []string, keypad bool)
}

// feedItem carries a raw event through the queue together with the
// synthetic flag captured when it entered.
type feedItem struct {
	raw       key.Raw
	synthetic bool
}

// entry is one registered handler.
type entry struct {
	id       Handle
	fn       Handler
	blocking bool
}

// Listener drains the raw event queue and runs the handler chain.
type Listener struct {
	mu       sync.RWMutex
	handlers []entry
	blocking int // registered blocking handlers
	closed   bool

	queue     chan feedItem
	startOnce sync.Once
	done      chan struct{}

	decoder   Decoder
	tracker   *state.Tracker
	synthetic func() bool
	log       zerolog.Logger
	metrics   *Metrics
}

// Option configures a Listener.
type Option func(*Listener)

// WithLogger sets the logger used for handler failures.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Listener) { l.log = log }
}

// WithSynthetic sets the predicate consulted as each raw event enters:
// true marks the event as engine-produced. The facade wires the
// suppressor's replay guard here.
func WithSynthetic(fn func() bool) Option {
	return func(l *Listener) { l.synthetic = fn }
}

// WithQueueSize sets the raw event queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Listener) {
		if n > 0 {
			l.queue = make(chan feedItem, n)
		}
	}
}

// NewListener creates a listener. The consumer goroutine starts lazily
// on the first Start call.
func NewListener(decoder Decoder, tracker *state.Tracker, opts ...Option) *Listener {
	l := &Listener{
		queue:   make(chan feedItem, 1024),
		done:    make(chan struct{}),
		decoder: decoder,
		tracker: tracker,
		log:     zerolog.Nop(),
		metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start spawns the consumer goroutine. Idempotent.
func (l *Listener) Start() {
	l.startOnce.Do(func() {
		go l.pump()
	})
}

// pump is the consumer loop: dequeue, decode, dispatch. Blocking on an
// empty queue is the only blocking point.
func (l *Listener) pump() {
	for {
		select {
		case item := <-l.queue:
			ev := l.decode(item)
			l.Dispatch(&ev)
		case <-l.done:
			return
		}
	}
}

// Feed accepts one raw event from the backend producer. The return
// value is the suppression decision: true means the backend should
// swallow the physical event.
//
// With no blocking handlers registered the event is queued for the
// consumer goroutine and Feed returns false immediately. With blocking
// handlers the event is dispatched synchronously, because the decision
// must reach the backend before the event continues to the OS.
func (l *Listener) Feed(raw key.Raw) bool {
	l.mu.RLock()
	closed, blocking := l.closed, l.blocking
	l.mu.RUnlock()
	if closed {
		return false
	}

	item := feedItem{raw: raw, synthetic: l.synthetic != nil && l.synthetic()}

	if blocking > 0 {
		ev := l.decode(item)
		return l.Dispatch(&ev)
	}

	select {
	case l.queue <- item:
	case <-l.done:
	}
	return false
}

// decode resolves a raw event into a canonical Event. Codes the
// backend cannot resolve get the single alias "unknown".
func (l *Listener) decode(item feedItem) key.Event {
	ev := key.Event{
		Kind:      item.raw.Kind,
		Code:      item.raw.Code,
		Time:      item.raw.Time,
		Device:    item.raw.Device,
		Synthetic: item.synthetic,
	}
	if l.decoder != nil {
		ev.Names, ev.Keypad = l.decoder.Decode(item.raw.Code)
	}
	if len(ev.Names) == 0 {
		ev.Names = []string{"unknown"}
	}
	return ev
}

// Dispatch updates the pressed state and runs the handler chain in
// registration order. Returns true if a handler stopped propagation.
func (l *Listener) Dispatch(ev *key.Event) bool {
	if l.tracker != nil {
		l.tracker.Update(ev)
	}

	l.mu.RLock()
	handlers := make([]entry, len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.RUnlock()

	l.metrics.RecordEvent()

	for _, h := range handlers {
		if l.invoke(h, ev) {
			l.metrics.RecordSuppressed()
			return true
		}
	}
	return false
}

// invoke runs one handler with panic recovery.
func (l *Listener) invoke(h entry, ev *key.Event) (stop bool) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			l.metrics.RecordPanic()
			l.log.Error().
				Str("event", ev.String()).
				Interface("panic", r).
				Bytes("stack", stack[:n]).
				Msg("handler panicked")
			stop = false
		}
	}()
	return h.fn(ev)
}

// AddHandler appends a handler to the chain and returns its handle.
// The blocking flag marks handlers that may suppress events; while any
// is registered, Feed dispatches synchronously.
func (l *Listener) AddHandler(fn Handler, blocking bool) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.New()
	l.handlers = append(l.handlers, entry{id: id, fn: fn, blocking: blocking})
	if blocking {
		l.blocking++
	}
	return id
}

// SetBlocking updates a handler's blocking flag in place, keeping its
// position in the chain. The facade flips its core handlers when
// suppression capability appears or disappears.
func (l *Listener) SetBlocking(id Handle, blocking bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, h := range l.handlers {
		if h.id != id {
			continue
		}
		if h.blocking == blocking {
			return nil
		}
		l.handlers[i].blocking = blocking
		if blocking {
			l.blocking++
		} else {
			l.blocking--
		}
		return nil
	}
	return ErrUnknownHandler
}

// RemoveHandler removes a handler. Effective only for future events; an
// event mid-dispatch completes against the chain captured at dispatch
// start.
func (l *Listener) RemoveHandler(id Handle) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, h := range l.handlers {
		if h.id == id {
			if h.blocking {
				l.blocking--
			}
			l.handlers = append(l.handlers[:i], l.handlers[i+1:]...)
			return nil
		}
	}
	return ErrUnknownHandler
}

// RemoveAll clears the handler chain.
func (l *Listener) RemoveAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = nil
	l.blocking = 0
}

// HandlerCount returns the number of registered handlers.
func (l *Listener) HandlerCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.handlers)
}

// Metrics returns the dispatch counters.
func (l *Listener) Metrics() *Metrics {
	return l.metrics
}

// Close stops the pump. Events queued but not yet dispatched are
// dropped; Feed becomes a no-op.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}
