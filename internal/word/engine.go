package word

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/dispatch"
	"github.com/dshills/keytap/internal/key"
)

// DefaultTimeout is the maximum gap between keystrokes before a
// listener's buffer resets.
const DefaultTimeout = 2 * time.Second

// Callback runs when a registered word is completed by a trigger key.
type Callback func()

// Replacer erases typed characters and writes replacement text. The
// engine facade implements it on top of the platform backend with the
// suppression replay guard held.
type Replacer interface {
	Replace(backspaces int, text string) error
}

// Options tune a single word listener.
type Options struct {
	// Triggers are the key names that complete a word. Defaults to
	// {"space"} when empty.
	Triggers []string
	// MatchSuffix accepts any buffer ending in the word, so "there"
	// matches a listener for "here".
	MatchSuffix bool
	// Timeout resets the buffer when the gap between keystrokes
	// exceeds it. Zero keeps DefaultTimeout; negative disables.
	Timeout time.Duration
}

func (o Options) normalized() Options {
	if len(o.Triggers) == 0 {
		o.Triggers = []string{"space"}
	} else {
		triggers := make([]string, len(o.Triggers))
		for i, t := range o.Triggers {
			triggers[i] = key.Normalize(t)
		}
		o.Triggers = triggers
	}
	switch {
	case o.Timeout == 0:
		o.Timeout = DefaultTimeout
	case o.Timeout < 0:
		o.Timeout = 0
	}
	return o
}

// listener is one registered word with its private buffer.
type listener struct {
	word     string
	callback Callback
	opts     Options

	buffer strings.Builder
	last   time.Time
}

// Engine fans typed keys out to every registered listener.
type Engine struct {
	mu        sync.Mutex
	listeners map[string]*listener

	shifted  func() bool
	replacer Replacer
	pool     *dispatch.Pool
	log      zerolog.Logger
}

// NewEngine creates a word engine. shifted reports whether a shift key
// is currently held and may be nil. replacer may be nil when no
// abbreviations will be registered. Callbacks run on the pool, never
// on the dispatch goroutine.
func NewEngine(shifted func() bool, replacer Replacer, pool *dispatch.Pool, log zerolog.Logger) *Engine {
	return &Engine{
		listeners: make(map[string]*listener),
		shifted:   shifted,
		replacer:  replacer,
		pool:      pool,
		log:       log,
	}
}

// AddWord registers a callback for a typed word.
func (e *Engine) AddWord(word string, cb Callback, opts Options) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.listeners[word]; ok {
		return ErrDuplicateWord
	}
	e.listeners[word] = &listener{word: word, callback: cb, opts: opts.normalized()}
	return nil
}

// AddAbbreviation registers a word whose completion erases the typed
// source plus the trigger key and writes replacement in its place.
func (e *Engine) AddAbbreviation(source, replacement string, opts Options) error {
	cb := func() {
		if e.replacer == nil {
			return
		}
		if err := e.replacer.Replace(len(source)+1, replacement); err != nil {
			e.log.Warn().Str("source", source).Err(err).Msg("abbreviation replace failed")
		}
	}
	return e.AddWord(source, cb, opts)
}

// Remove unregisters a word.
func (e *Engine) Remove(word string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.listeners[word]; !ok {
		return ErrUnknownWord
	}
	delete(e.listeners, word)
	return nil
}

// Clear drops every registered word.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = make(map[string]*listener)
}

// Len reports the number of registered words.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Handler observes the event stream. It never suppresses. Synthetic
// events are ignored so replayed or engine-typed text, abbreviation
// replacements included, is never captured back into a buffer.
func (e *Engine) Handler(ev *key.Event) bool {
	if ev.Synthetic || !ev.IsDown() {
		return false
	}
	name := ev.Name()
	if key.IsModifier(name) {
		return false
	}

	shifted := e.shifted != nil && e.shifted()

	e.mu.Lock()
	var fire []Callback
	for _, l := range e.listeners {
		if cb := l.observe(name, ev.Time, shifted); cb != nil {
			fire = append(fire, cb)
		}
	}
	e.mu.Unlock()

	for _, cb := range fire {
		if err := e.pool.Submit(cb); err != nil {
			e.log.Warn().Err(err).Msg("word callback dropped")
		}
	}
	return false
}

// observe feeds one typed key to the listener and returns its callback
// when the word completed.
func (l *listener) observe(name string, at time.Time, shifted bool) Callback {
	if l.opts.Timeout > 0 && !l.last.IsZero() && at.Sub(l.last) > l.opts.Timeout {
		l.buffer.Reset()
	}
	l.last = at

	if l.isTrigger(name) {
		matched := l.buffer.String() == l.word ||
			(l.opts.MatchSuffix && strings.HasSuffix(l.buffer.String(), l.word))
		l.buffer.Reset()
		if matched {
			return l.callback
		}
		return nil
	}

	// Named keys such as backspace or enter invalidate the word.
	if len([]rune(name)) > 1 {
		l.buffer.Reset()
		return nil
	}

	if shifted {
		name = strings.ToUpper(name)
	}
	l.buffer.WriteString(name)
	return nil
}

func (l *listener) isTrigger(name string) bool {
	for _, t := range l.opts.Triggers {
		if t == name {
			return true
		}
	}
	return false
}
