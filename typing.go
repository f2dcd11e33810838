package keytap

import (
	"time"
	"unicode"

	"github.com/dshills/keytap/internal/key"
)

// shiftedRunes maps characters produced with shift on a US layout to
// the base key that carries them.
var shiftedRunes = map[rune]string{
	'!': "1", '@': "2", '#': "3", '$': "4", '%': "5",
	'^': "6", '&': "7", '*': "8", '(': "9", ')': "0",
	'_': "-", '+': "=", '{': "[", '}': "]", '|': "\\",
	':': ";", '"': "'", '<': ",", '>': ".", '?': "/", '~': "`",
}

// Send parses a spec like "ctrl+v" or "alt+tab, enter" and plays it:
// each step's keys go down in order and up in reverse.
func (e *Engine) Send(spec string) error {
	steps, err := key.ParseHotkey(spec, e.backend())
	if err != nil {
		return err
	}

	be := e.backend()
	e.sup.WithReplay(func() {
		for _, step := range steps {
			for _, c := range step {
				if err = be.Press(c.Codes[0]); err != nil {
					return
				}
			}
			for i := len(step) - 1; i >= 0; i-- {
				if err = be.Release(step[i].Codes[0]); err != nil {
					return
				}
			}
		}
	})
	return err
}

// Press holds down every key of a single-step spec.
func (e *Engine) Press(spec string) error {
	step, err := key.ParseStep(spec, e.backend())
	if err != nil {
		return err
	}
	be := e.backend()
	e.sup.WithReplay(func() {
		for _, c := range step {
			if err = be.Press(c.Codes[0]); err != nil {
				return
			}
		}
	})
	return err
}

// Release lets go of every key of a single-step spec.
func (e *Engine) Release(spec string) error {
	step, err := key.ParseStep(spec, e.backend())
	if err != nil {
		return err
	}
	be := e.backend()
	e.sup.WithReplay(func() {
		for _, c := range step {
			if err = be.Release(c.Codes[0]); err != nil {
				return
			}
		}
	})
	return err
}

// Write types text character by character, pressing shift for
// capitals and shifted symbols, waiting delay between characters.
// Characters without a key on the layout go through the backend's
// unicode path.
func (e *Engine) Write(text string, delay time.Duration) error {
	var err error
	e.sup.WithReplay(func() {
		err = e.writeRunes(text, delay)
	})
	return err
}

func (e *Engine) writeRunes(text string, delay time.Duration) error {
	be := e.backend()
	first := true
	for _, r := range text {
		if !first && delay > 0 {
			time.Sleep(delay)
		}
		first = false

		name, shift := runeKey(r)
		codes, err := be.MapName(name)
		if err != nil {
			if uerr := be.TypeUnicode(r); uerr != nil {
				return uerr
			}
			continue
		}

		var shiftCode key.Code
		if shift {
			shiftCodes, serr := be.MapName("shift")
			if serr != nil {
				return serr
			}
			shiftCode = shiftCodes[0]
			if err := be.Press(shiftCode); err != nil {
				return err
			}
		}
		if err := be.Press(codes[0]); err != nil {
			return err
		}
		if err := be.Release(codes[0]); err != nil {
			return err
		}
		if shift {
			if err := be.Release(shiftCode); err != nil {
				return err
			}
		}
	}
	return nil
}

// runeKey resolves a character to the key name producing it and
// whether shift is required.
func runeKey(r rune) (string, bool) {
	switch r {
	case ' ':
		return "space", false
	case '\n':
		return "enter", false
	case '\t':
		return "tab", false
	}
	if unicode.IsUpper(r) {
		return string(unicode.ToLower(r)), true
	}
	if base, ok := shiftedRunes[r]; ok {
		return base, true
	}
	return string(r), false
}

// tap presses and releases a named key.
func (e *Engine) tap(name string) error {
	be := e.backend()
	codes, err := be.MapName(name)
	if err != nil {
		return err
	}
	if err := be.Press(codes[0]); err != nil {
		return err
	}
	return be.Release(codes[0])
}
