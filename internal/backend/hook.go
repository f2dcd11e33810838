package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/key"
)

// Hook is the global OS hook backend. It captures keyboard input
// system-wide and synthesizes through the OS injection APIs. The hook
// library delivers events after the OS has processed them, so the
// suppression verdict cannot be honored here; callers needing true
// suppression use the evdev backend.
type Hook struct {
	mu      sync.Mutex
	started bool
	done    chan struct{}

	kbOnce sync.Once
	kb     keybd_event.KeyBonding
	kbErr  error

	log zerolog.Logger
}

// NewHook creates the global hook backend.
func NewHook(log zerolog.Logger) *Hook {
	return &Hook{log: log}
}

func (h *Hook) Start(emit func(key.Raw) bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return ErrAlreadyStarted
	}
	h.started = true
	h.done = make(chan struct{})

	events := hook.Start()
	go h.run(events, emit, h.done)
	return nil
}

func (h *Hook) run(events chan hook.Event, emit func(key.Raw) bool, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			kind, ok := hookKind(ev.Kind)
			if !ok {
				continue
			}
			emit(key.Raw{
				Kind:   kind,
				Code:   key.Code(ev.Rawcode),
				Time:   time.Now(),
				Device: "hook",
			})
		}
	}
}

func hookKind(k uint8) (key.Kind, bool) {
	switch k {
	case hook.KeyDown, hook.KeyHold:
		return key.KindDown, true
	case hook.KeyUp:
		return key.KindUp, true
	default:
		return 0, false
	}
}

func (h *Hook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return nil
	}
	h.started = false
	close(h.done)
	hook.End()
	return nil
}

func (h *Hook) bonding() (*keybd_event.KeyBonding, error) {
	h.kbOnce.Do(func() {
		h.kb, h.kbErr = keybd_event.NewKeyBonding()
	})
	if h.kbErr != nil {
		return nil, fmt.Errorf("%w: key injection: %v", ErrNotAvailable, h.kbErr)
	}
	return &h.kb, nil
}

func (h *Hook) Press(code key.Code) error {
	kb, err := h.bonding()
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	kb.SetKeys(int(code))
	return kb.Press()
}

func (h *Hook) Release(code key.Code) error {
	kb, err := h.bonding()
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	kb.SetKeys(int(code))
	return kb.Release()
}

// TypeUnicode falls back to pressing the key that produces the rune on
// the current layout. Runes without a key are not supported through
// the hook injection path.
func (h *Hook) TypeUnicode(r rune) error {
	codes, err := h.MapName(string(r))
	if err != nil {
		return fmt.Errorf("%w: no key for %q", ErrNotAvailable, r)
	}
	if err := h.Press(codes[0]); err != nil {
		return err
	}
	return h.Release(codes[0])
}

func (h *Hook) MapName(name string) ([]key.Code, error) {
	codes, ok := layoutCodes(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return codes, nil
}

// Decode asks the hook library for the character first and falls back
// to the static layout table.
func (h *Hook) Decode(code key.Code) ([]string, bool) {
	if s := hook.RawcodetoKeychar(uint16(code)); s != "" {
		return []string{key.Normalize(s)}, false
	}
	return layoutNames(code)
}
