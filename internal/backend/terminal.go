package backend

import (
	"fmt"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/key"
)

// Terminal captures keys from the controlling terminal via tcell. It
// sees only what the terminal forwards: presses arrive as completed
// taps, so each key emits a down immediately followed by an up, with
// modifier transitions reconstructed around it. Synthesis loops back
// into the local stream; a terminal has no path to inject into the OS.
type Terminal struct {
	mu      sync.Mutex
	screen  tcell.Screen
	emit    func(key.Raw) bool
	started bool
	log     zerolog.Logger
}

// NewTerminal creates the terminal capture backend.
func NewTerminal(log zerolog.Logger) *Terminal {
	return &Terminal{log: log}
}

func (t *Terminal) Start(emit func(key.Raw) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return ErrAlreadyStarted
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("backend: open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("backend: init terminal: %w", err)
	}

	t.screen = screen
	t.emit = emit
	t.started = true
	go t.run(screen, emit)
	return nil
}

func (t *Terminal) run(screen tcell.Screen, emit func(key.Raw) bool) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			t.emitKey(ev, emit)
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

// emitKey reconstructs transitions from a terminal key event: held
// modifiers down, the key down and up, modifiers up.
func (t *Terminal) emitKey(ev *tcell.EventKey, emit func(key.Raw) bool) {
	name, ok := terminalKeyName(ev)
	if !ok {
		return
	}
	codes, ok := layoutCodes(name)
	if !ok {
		t.log.Debug().Str("key", name).Msg("terminal key has no code")
		return
	}

	now := time.Now()
	mods := terminalModifiers(ev.Modifiers())
	for _, mod := range mods {
		emit(key.Raw{Kind: key.KindDown, Code: mod, Time: now, Device: "terminal"})
	}
	emit(key.Raw{Kind: key.KindDown, Code: codes[0], Time: now, Device: "terminal"})
	emit(key.Raw{Kind: key.KindUp, Code: codes[0], Time: now, Device: "terminal"})
	for i := len(mods) - 1; i >= 0; i-- {
		emit(key.Raw{Kind: key.KindUp, Code: mods[i], Time: now, Device: "terminal"})
	}
}

func terminalModifiers(mask tcell.ModMask) []key.Code {
	var mods []key.Code
	appendMod := func(name string) {
		if codes, ok := layoutCodes(name); ok {
			mods = append(mods, codes[0])
		}
	}
	if mask&tcell.ModCtrl != 0 {
		appendMod("ctrl")
	}
	if mask&tcell.ModAlt != 0 {
		appendMod("alt")
	}
	if mask&tcell.ModShift != 0 {
		appendMod("shift")
	}
	if mask&tcell.ModMeta != 0 {
		appendMod("windows")
	}
	return mods
}

func terminalKeyName(ev *tcell.EventKey) (string, bool) {
	if ev.Key() == tcell.KeyRune {
		r := unicode.ToLower(ev.Rune())
		if r == ' ' {
			return "space", true
		}
		return string(r), true
	}
	if name, ok := terminalSpecial[ev.Key()]; ok {
		return name, true
	}
	// ctrl-letter combos arrive as dedicated key constants
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		return string(rune('a' + ev.Key() - tcell.KeyCtrlA)), true
	}
	return "", false
}

var terminalSpecial = map[tcell.Key]string{
	tcell.KeyEnter:      "enter",
	tcell.KeyEsc:        "esc",
	tcell.KeyTab:        "tab",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyDelete:     "delete",
	tcell.KeyInsert:     "insert",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyPgUp:       "page up",
	tcell.KeyPgDn:       "page down",
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyF1:         "f1",
	tcell.KeyF2:         "f2",
	tcell.KeyF3:         "f3",
	tcell.KeyF4:         "f4",
	tcell.KeyF5:         "f5",
	tcell.KeyF6:         "f6",
	tcell.KeyF7:         "f7",
	tcell.KeyF8:         "f8",
	tcell.KeyF9:         "f9",
	tcell.KeyF10:        "f10",
	tcell.KeyF11:        "f11",
	tcell.KeyF12:        "f12",
}

func (t *Terminal) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return nil
	}
	t.started = false
	t.emit = nil
	t.screen.Fini()
	t.screen = nil
	return nil
}

func (t *Terminal) Press(code key.Code) error {
	return t.loopback(key.KindDown, code)
}

func (t *Terminal) Release(code key.Code) error {
	return t.loopback(key.KindUp, code)
}

func (t *Terminal) TypeUnicode(r rune) error {
	codes, ok := layoutCodes(string(r))
	if !ok {
		return fmt.Errorf("%w: no key for %q", ErrNotAvailable, r)
	}
	if err := t.loopback(key.KindDown, codes[0]); err != nil {
		return err
	}
	return t.loopback(key.KindUp, codes[0])
}

func (t *Terminal) loopback(kind key.Kind, code key.Code) error {
	t.mu.Lock()
	emit := t.emit
	t.mu.Unlock()
	if emit == nil {
		return ErrNotStarted
	}
	emit(key.Raw{Kind: kind, Code: code, Time: time.Now(), Device: "terminal"})
	return nil
}

func (t *Terminal) MapName(name string) ([]key.Code, error) {
	codes, ok := layoutCodes(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return codes, nil
}

func (t *Terminal) Decode(code key.Code) ([]string, bool) {
	return layoutNames(code)
}
