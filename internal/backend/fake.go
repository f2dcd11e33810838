package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/key"
)

// SynthKind labels one recorded synthesis call on the fake backend.
type SynthKind int

const (
	SynthPress SynthKind = iota
	SynthRelease
	SynthRune
)

// SynthCall is one synthesized action recorded by the fake backend.
type SynthCall struct {
	Kind SynthKind
	Code key.Code
	Rune rune
}

// Fake is an in-memory backend for tests. Injected events go through
// the emit callback like OS input, and every synthesis call is
// recorded. With looping enabled, synthesized presses also re-enter
// the stream, the way OS-injected events come back through a real
// hook.
type Fake struct {
	mu      sync.Mutex
	emit    func(key.Raw) bool
	started bool
	loop    bool
	clock   func() time.Time
	calls   []SynthCall
	log     zerolog.Logger
}

// NewFake creates a fake backend using the wall clock.
func NewFake(log zerolog.Logger) *Fake {
	return &Fake{clock: time.Now, log: log}
}

// SetClock replaces the time source for injected and looped events.
func (f *Fake) SetClock(clock func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = clock
}

// LoopSynthesized makes Press, Release and TypeUnicode feed their
// transitions back through the emit callback.
func (f *Fake) LoopSynthesized(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loop = on
}

func (f *Fake) Start(emit func(key.Raw) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return ErrAlreadyStarted
	}
	f.started = true
	f.emit = emit
	return nil
}

func (f *Fake) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = false
	f.emit = nil
	return nil
}

// Inject delivers one raw transition as if the OS produced it and
// returns the suppression verdict.
func (f *Fake) Inject(kind key.Kind, code key.Code) bool {
	f.mu.Lock()
	emit := f.emit
	at := f.clock()
	f.mu.Unlock()
	if emit == nil {
		return false
	}
	return emit(key.Raw{Kind: kind, Code: code, Time: at, Device: "fake"})
}

// InjectName is Inject keyed by name on the US layout. Unknown names
// panic; they are a bug in the test, not an input condition.
func (f *Fake) InjectName(kind key.Kind, name string) bool {
	codes, ok := layoutCodes(name)
	if !ok {
		panic(fmt.Sprintf("backend: fake inject of unknown key %q", name))
	}
	return f.Inject(kind, codes[0])
}

// Tap injects a down then an up for a named key.
func (f *Fake) Tap(name string) {
	f.InjectName(key.KindDown, name)
	f.InjectName(key.KindUp, name)
}

func (f *Fake) Press(code key.Code) error {
	return f.synthesize(SynthCall{Kind: SynthPress, Code: code}, key.KindDown, code)
}

func (f *Fake) Release(code key.Code) error {
	return f.synthesize(SynthCall{Kind: SynthRelease, Code: code}, key.KindUp, code)
}

func (f *Fake) TypeUnicode(r rune) error {
	f.mu.Lock()
	f.calls = append(f.calls, SynthCall{Kind: SynthRune, Rune: r})
	emit, loop, at := f.emit, f.loop, f.clock()
	f.mu.Unlock()

	if loop && emit != nil {
		if codes, ok := layoutCodes(string(r)); ok {
			emit(key.Raw{Kind: key.KindDown, Code: codes[0], Time: at, Device: "fake"})
			emit(key.Raw{Kind: key.KindUp, Code: codes[0], Time: at, Device: "fake"})
		}
	}
	return nil
}

func (f *Fake) synthesize(call SynthCall, kind key.Kind, code key.Code) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	emit, loop, at := f.emit, f.loop, f.clock()
	f.mu.Unlock()

	if loop && emit != nil {
		emit(key.Raw{Kind: kind, Code: code, Time: at, Device: "fake"})
	}
	return nil
}

// Calls returns a copy of the recorded synthesis calls.
func (f *Fake) Calls() []SynthCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]SynthCall, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// ResetCalls clears the recorded synthesis calls.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *Fake) MapName(name string) ([]key.Code, error) {
	codes, ok := layoutCodes(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return codes, nil
}

func (f *Fake) Decode(code key.Code) ([]string, bool) {
	return layoutNames(code)
}
