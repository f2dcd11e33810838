package hotkey

import (
	"testing"
	"time"

	"github.com/dshills/keytap/internal/key"
	"github.com/dshills/keytap/internal/state"
)

// keys used throughout: name -> code
var codes = map[string]key.Code{
	"ctrl":  29,
	"shift": 42,
	"a":     30,
	"b":     48,
	"s":     31,
	"d":     32,
}

func step(names ...string) key.Step {
	s := make(key.Step, len(names))
	for i, n := range names {
		s[i] = key.Choice{Name: n, Codes: []key.Code{codes[n]}}
	}
	return s
}

// sim drives a tracker and a matcher with a scripted event stream.
type sim struct {
	tracker *state.Tracker
	matcher *Matcher
	now     time.Time
	fired   int
}

func newSim(m *Matcher) *sim {
	return &sim{
		tracker: state.New(),
		matcher: m,
		now:     time.Unix(1000, 0),
	}
}

func (s *sim) event(kind key.Kind, name string) {
	ev := &key.Event{Kind: kind, Code: codes[name], Names: []string{name}, Time: s.now}
	s.tracker.Update(ev)
	if ev.IsDown() && s.matcher.HandleDown(ev, s.tracker) {
		s.fired++
	}
}

func (s *sim) down(name string) { s.event(key.KindDown, name) }
func (s *sim) up(name string)   { s.event(key.KindUp, name) }

func (s *sim) advance(d time.Duration) { s.now = s.now.Add(d) }

func TestSingleKeyFiresOnDown(t *testing.T) {
	s := newSim(NewMatcher([]key.Step{step("a")}, 0))

	s.down("b")
	s.up("b")
	s.down("a")
	if s.fired != 1 {
		t.Fatalf("fired = %d, want 1 (noise then isolated a)", s.fired)
	}

	s.up("a")
	s.down("a")
	if s.fired != 2 {
		t.Fatalf("fired = %d, want 2 after second press", s.fired)
	}
}

func TestChordFiresWhenComplete(t *testing.T) {
	s := newSim(NewMatcher([]key.Step{step("ctrl", "a")}, 0))

	s.down("ctrl")
	if s.fired != 0 {
		t.Fatal("must not fire on partial chord")
	}
	s.down("a")
	if s.fired != 1 {
		t.Fatalf("fired = %d, want 1 when chord complete", s.fired)
	}
}

func TestMultiStepSequence(t *testing.T) {
	s := newSim(NewMatcher([]key.Step{step("ctrl", "a"), step("b")}, 0))

	// Positive: chord, full release, then b.
	s.down("ctrl")
	s.down("a")
	s.up("a")
	s.up("ctrl")
	s.down("b")
	if s.fired != 1 {
		t.Fatalf("fired = %d, want 1 for clean sequence", s.fired)
	}
}

func TestMultiStepRequiresRelease(t *testing.T) {
	s := newSim(NewMatcher([]key.Step{step("ctrl", "a"), step("b")}, 0))

	// b arrives while ctrl and a are still held: step 2 is not
	// exactly satisfied and the attempt resets.
	s.down("ctrl")
	s.down("a")
	s.down("b")
	if s.fired != 0 {
		t.Fatalf("fired = %d, want 0 when b overlaps the chord", s.fired)
	}
}

func TestResetAndRetrySameEvent(t *testing.T) {
	s := newSim(NewMatcher([]key.Step{step("a"), step("b")}, 0))

	// a advances to step 2; a second a is unexpected there, resets,
	// and re-evaluates as a fresh step-1 a.
	s.down("a")
	s.up("a")
	s.down("a")
	s.up("a")
	s.down("b")
	if s.fired != 1 {
		t.Fatalf("fired = %d, want 1 after aborted attempt restarts", s.fired)
	}
}

func TestTimeoutResetsCursor(t *testing.T) {
	timeout := time.Second
	s := newSim(NewMatcher([]key.Step{step("a"), step("b")}, timeout))

	s.down("a")
	s.up("a")
	s.advance(timeout + time.Millisecond)
	s.down("b")
	if s.fired != 0 {
		t.Fatal("gap beyond timeout must reset the sequence")
	}
}

func TestTimeoutBoundaryIsInclusive(t *testing.T) {
	timeout := time.Second
	s := newSim(NewMatcher([]key.Step{step("a"), step("b")}, timeout))

	// A gap exactly equal to the timeout still counts.
	s.down("a")
	s.up("a")
	s.advance(timeout)
	s.down("b")
	if s.fired != 1 {
		t.Fatal("gap equal to timeout must still match")
	}
}

func TestZeroTimeoutMeansNoTimeout(t *testing.T) {
	s := newSim(NewMatcher([]key.Step{step("a"), step("b")}, 0))

	s.down("a")
	s.up("a")
	s.advance(24 * time.Hour)
	s.down("b")
	if s.fired != 1 {
		t.Fatal("zero timeout must mean infinite patience")
	}
}

func TestEndToEndSequence(t *testing.T) {
	steps := []key.Step{step("ctrl", "shift", "a"), step("s")}

	// Clean sequence fires exactly once.
	s := newSim(NewMatcher(steps, 0))
	s.down("ctrl")
	s.down("shift")
	s.down("a")
	s.up("a")
	s.up("shift")
	s.up("ctrl")
	s.down("s")
	if s.fired != 1 {
		t.Fatalf("fired = %d, want exactly 1", s.fired)
	}

	// Same prefix ending in d never fires and the cursor resets.
	s = newSim(NewMatcher(steps, 0))
	s.down("ctrl")
	s.down("shift")
	s.down("a")
	s.up("a")
	s.up("shift")
	s.up("ctrl")
	s.down("d")
	if s.fired != 0 {
		t.Fatal("wrong final key must not fire")
	}
	if s.matcher.Cursor() != 0 {
		t.Fatalf("cursor = %d, want 0 after mismatch", s.matcher.Cursor())
	}
}
