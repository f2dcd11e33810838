//go:build linux

package backend

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/holoplot/go-evdev"
	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/key"
)

// Evdev reads raw transitions straight from /dev/input on Linux and
// writes synthesized ones back to the first keyboard device. It needs
// read access to the event nodes, usually via the input group.
type Evdev struct {
	mu      sync.Mutex
	devices []*evdev.InputDevice
	started bool
	done    chan struct{}
	wg      sync.WaitGroup
	log     zerolog.Logger
}

func newEvdev(log zerolog.Logger) (Backend, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("backend: list input devices: %w", err)
	}

	var devices []*evdev.InputDevice
	denied := false
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			if errors.Is(err, os.ErrPermission) {
				denied = true
			}
			continue
		}
		if !isKeyboard(dev) {
			dev.Close()
			continue
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		if denied {
			return nil, fmt.Errorf("%w: /dev/input", ErrPermissionDenied)
		}
		return nil, fmt.Errorf("%w: no keyboard device", ErrNotAvailable)
	}
	return &Evdev{devices: devices, log: log}, nil
}

// isKeyboard keeps devices that report key and autorepeat events,
// which filters out mice and buttons-only devices.
func isKeyboard(dev *evdev.InputDevice) bool {
	hasKey, hasRep := false, false
	for _, t := range dev.CapableTypes() {
		switch t {
		case evdev.EV_KEY:
			hasKey = true
		case evdev.EV_REP:
			hasRep = true
		}
	}
	if !hasKey || !hasRep {
		return false
	}
	if name, err := dev.Name(); err == nil && strings.Contains(strings.ToLower(name), "mouse") {
		return false
	}
	return true
}

func (e *Evdev) Start(emit func(key.Raw) bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return ErrAlreadyStarted
	}
	e.started = true
	e.done = make(chan struct{})

	for _, dev := range e.devices {
		e.wg.Add(1)
		go e.read(dev, emit)
	}
	return nil
}

func (e *Evdev) read(dev *evdev.InputDevice, emit func(key.Raw) bool) {
	defer e.wg.Done()

	name, _ := dev.Name()
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			select {
			case <-e.done:
			default:
				e.log.Warn().Str("device", name).Err(err).Msg("device read failed")
			}
			return
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}

		var kind key.Kind
		switch ev.Value {
		case 0:
			kind = key.KindUp
		case 1, 2:
			kind = key.KindDown
		default:
			continue
		}
		emit(key.Raw{
			Kind:   kind,
			Code:   key.Code(ev.Code),
			Time:   time.Unix(ev.Time.Sec, ev.Time.Usec*1000),
			Device: name,
		})
	}
}

func (e *Evdev) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return nil
	}
	e.started = false
	close(e.done)
	for _, dev := range e.devices {
		dev.Close()
	}
	e.wg.Wait()
	e.devices = nil
	return nil
}

func (e *Evdev) Press(code key.Code) error {
	return e.write(code, 1)
}

func (e *Evdev) Release(code key.Code) error {
	return e.write(code, 0)
}

func (e *Evdev) write(code key.Code, value int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.devices) == 0 {
		return ErrNotStarted
	}
	dev := e.devices[0]

	events := []*evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: evdev.EvCode(code), Value: value},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT},
	}
	for _, ev := range events {
		if err := dev.WriteOne(ev); err != nil {
			return fmt.Errorf("backend: write key event: %w", err)
		}
	}
	return nil
}

func (e *Evdev) TypeUnicode(r rune) error {
	codes, ok := layoutCodes(string(r))
	if !ok {
		return fmt.Errorf("%w: no key for %q", ErrNotAvailable, r)
	}
	if err := e.Press(codes[0]); err != nil {
		return err
	}
	return e.Release(codes[0])
}

func (e *Evdev) MapName(name string) ([]key.Code, error) {
	codes, ok := layoutCodes(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return codes, nil
}

func (e *Evdev) Decode(code key.Code) ([]string, bool) {
	return layoutNames(code)
}
