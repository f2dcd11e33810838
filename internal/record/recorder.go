package record

import (
	"sync"

	"github.com/dshills/keytap/internal/key"
)

// Recorder accumulates events while armed. Its Handler is registered
// with the dispatcher for the duration of a recording.
type Recorder struct {
	mu     sync.Mutex
	events []key.Event
	active bool
}

// NewRecorder creates an idle recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start arms the recorder and discards any previous capture.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.active = true
}

// Stop disarms the recorder and returns the captured events.
func (r *Recorder) Stop() []key.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
	events := r.events
	r.events = nil
	return events
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Handler observes the event stream. It never suppresses.
func (r *Recorder) Handler(ev *key.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		r.events = append(r.events, *ev)
	}
	return false
}
