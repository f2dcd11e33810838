package keytap

import (
	"errors"
	"time"

	"github.com/dshills/keytap/internal/word"
)

// WordOption configures a word listener or abbreviation.
type WordOption func(*word.Options)

// WithTriggers replaces the trigger keys completing a word. The
// default is the space key.
func WithTriggers(names ...string) WordOption {
	return func(o *word.Options) { o.Triggers = names }
}

// MatchSuffix accepts any typed word ending in the registered one.
func MatchSuffix() WordOption {
	return func(o *word.Options) { o.MatchSuffix = true }
}

// WithWordTimeout bounds the gap between keystrokes of a word. The
// default is two seconds; a negative value disables the bound.
func WithWordTimeout(d time.Duration) WordOption {
	return func(o *word.Options) { o.Timeout = d }
}

func buildWordOptions(opts []WordOption) word.Options {
	var o word.Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AddWordListener calls fn whenever w is typed and completed by a
// trigger key. Matching is case sensitive; shift gives capitals.
func (e *Engine) AddWordListener(w string, fn func(), opts ...WordOption) error {
	e.mu.Lock()
	if err := e.startLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	return e.words.AddWord(w, fn, buildWordOptions(opts))
}

// RemoveWordListener unregisters a word or abbreviation source.
func (e *Engine) RemoveWordListener(w string) error {
	if err := e.words.Remove(w); err != nil {
		if errors.Is(err, word.ErrUnknownWord) {
			return ErrUnknownHandle
		}
		return err
	}
	return nil
}

// AddAbbreviation replaces the typed source word and its trigger key
// with replacement text.
func (e *Engine) AddAbbreviation(source, replacement string, opts ...WordOption) error {
	e.mu.Lock()
	if err := e.startLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	return e.words.AddAbbreviation(source, replacement, buildWordOptions(opts))
}
