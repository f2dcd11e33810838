package record

import (
	"time"

	"github.com/dshills/keytap/internal/key"
)

// Keyer synthesizes key transitions. Implemented by the platform
// backend.
type Keyer interface {
	Press(code key.Code) error
	Release(code key.Code) error
}

// Player replays recorded events through a Keyer.
type Player struct {
	keyer Keyer
	sleep func(time.Duration)
}

// NewPlayer creates a player synthesizing through keyer.
func NewPlayer(keyer Keyer) *Player {
	return &Player{keyer: keyer, sleep: time.Sleep}
}

// Play replays events with inter-event gaps scaled by 1/speed. A speed
// of zero drops the gaps entirely. Keys in pressed are released before
// playback and pressed again afterwards, so the replay starts from a
// neutral keyboard and the user's held keys survive it.
func (p *Player) Play(events []key.Event, pressed []key.Code, speed float64) error {
	for _, code := range pressed {
		if err := p.keyer.Release(code); err != nil {
			return err
		}
	}

	var last time.Time
	for _, ev := range events {
		if speed > 0 && !last.IsZero() {
			if gap := ev.Time.Sub(last); gap > 0 {
				p.sleep(time.Duration(float64(gap) / speed))
			}
		}
		last = ev.Time

		if err := p.emit(ev); err != nil {
			return err
		}
	}

	for _, code := range pressed {
		if err := p.keyer.Press(code); err != nil {
			return err
		}
	}
	return nil
}

func (p *Player) emit(ev key.Event) error {
	switch ev.Kind {
	case key.KindUp:
		return p.keyer.Release(ev.Code)
	case key.KindDouble:
		if err := p.keyer.Press(ev.Code); err != nil {
			return err
		}
		if err := p.keyer.Release(ev.Code); err != nil {
			return err
		}
		if err := p.keyer.Press(ev.Code); err != nil {
			return err
		}
		return p.keyer.Release(ev.Code)
	default:
		return p.keyer.Press(ev.Code)
	}
}
