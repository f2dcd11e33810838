package keytap

import (
	"context"

	"github.com/dshills/keytap/internal/record"
)

// Record captures events until the stop combo is pressed, or until ctx
// is done when combo is empty. The events captured so far are returned
// either way; the stop combo itself is included.
func (e *Engine) Record(ctx context.Context, combo string) ([]Event, error) {
	e.mu.Lock()
	if err := e.startLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	e.recorder.Start()
	defer e.recorder.Stop()

	if combo == "" {
		<-ctx.Done()
		return e.recorder.Stop(), nil
	}

	err := e.Wait(ctx, combo)
	events := e.recorder.Stop()
	if err != nil && ctx.Err() == nil {
		return events, err
	}
	return events, nil
}

// Play replays recorded events through the backend with inter-event
// gaps scaled by 1/speed; zero speed drops the gaps. Keys held by the
// user are released first and restored afterwards.
func (e *Engine) Play(events []Event, speed float64) error {
	player := record.NewPlayer(e.backend())
	pressed := e.tracker.Snapshot()

	var err error
	e.sup.WithReplay(func() {
		err = player.Play(events, pressed, speed)
	})
	return err
}

// SaveRecording writes events to path as newline-delimited JSON.
func SaveRecording(path string, events []Event) error {
	return record.Save(path, events)
}

// LoadRecording reads a recording written by SaveRecording.
func LoadRecording(path string) ([]Event, error) {
	return record.Load(path)
}
