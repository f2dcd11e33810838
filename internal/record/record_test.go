package record

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/keytap/internal/key"
)

type keyCall struct {
	code key.Code
	up   bool
}

type fakeKeyer struct {
	calls []keyCall
}

func (f *fakeKeyer) Press(code key.Code) error {
	f.calls = append(f.calls, keyCall{code: code})
	return nil
}

func (f *fakeKeyer) Release(code key.Code) error {
	f.calls = append(f.calls, keyCall{code: code, up: true})
	return nil
}

func sampleEvents() []key.Event {
	base := time.Unix(1700000000, 250_000_000)
	return []key.Event{
		{Kind: key.KindDown, Code: 30, Names: []string{"a"}, Time: base},
		{Kind: key.KindUp, Code: 30, Names: []string{"a"}, Time: base.Add(40 * time.Millisecond)},
		{Kind: key.KindDown, Code: 57, Names: []string{"space"}, Time: base.Add(90 * time.Millisecond), Keypad: true},
		{Kind: key.KindUp, Code: 57, Names: []string{"space"}, Time: base.Add(130 * time.Millisecond)},
	}
}

func TestRecorderCapturesWhileArmed(t *testing.T) {
	r := NewRecorder()
	events := sampleEvents()

	r.Handler(&events[0])
	r.Start()
	if !r.Active() {
		t.Fatal("recorder not active after Start")
	}
	r.Handler(&events[1])
	r.Handler(&events[2])
	got := r.Stop()
	r.Handler(&events[3])

	if len(got) != 2 {
		t.Fatalf("captured %d events, want 2", len(got))
	}
	if got[0].Code != 30 || got[0].Kind != key.KindUp {
		t.Errorf("first captured event = %+v", got[0])
	}
	if r.Active() {
		t.Error("recorder still active after Stop")
	}
}

func TestPlayOrderAndStateRestore(t *testing.T) {
	keyer := &fakeKeyer{}
	p := NewPlayer(keyer)
	p.sleep = func(time.Duration) {}

	held := []key.Code{29}
	if err := p.Play(sampleEvents(), held, 0); err != nil {
		t.Fatalf("Play: %v", err)
	}

	want := []keyCall{
		{code: 29, up: true},
		{code: 30}, {code: 30, up: true},
		{code: 57}, {code: 57, up: true},
		{code: 29},
	}
	if len(keyer.calls) != len(want) {
		t.Fatalf("synthesized %d calls, want %d", len(keyer.calls), len(want))
	}
	for i, call := range keyer.calls {
		if call != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, call, want[i])
		}
	}
}

func TestPlaySpeedScalesGaps(t *testing.T) {
	for _, speed := range []float64{1, 100} {
		keyer := &fakeKeyer{}
		p := NewPlayer(keyer)
		var slept time.Duration
		p.sleep = func(d time.Duration) { slept += d }

		if err := p.Play(sampleEvents(), nil, speed); err != nil {
			t.Fatalf("Play at %v: %v", speed, err)
		}
		want := time.Duration(float64(130*time.Millisecond) / speed)
		if slept != want {
			t.Errorf("speed %v slept %v, want %v", speed, slept, want)
		}
	}
}

func TestPlayZeroSpeedSkipsSleep(t *testing.T) {
	p := NewPlayer(&fakeKeyer{})
	p.sleep = func(time.Duration) { t.Error("slept at speed zero") }
	if err := p.Play(sampleEvents(), nil, 0); err != nil {
		t.Fatalf("Play: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	events := sampleEvents()

	if err := Save(path, events); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got) != len(events) {
		t.Fatalf("loaded %d events, want %d", len(got), len(events))
	}
	for i, ev := range got {
		want := events[i]
		if ev.Kind != want.Kind || ev.Code != want.Code || ev.Name() != want.Name() || ev.Keypad != want.Keypad {
			t.Errorf("event %d = %+v, want %+v", i, ev, want)
		}
		if drift := ev.Time.Sub(want.Time); drift < -time.Millisecond || drift > time.Millisecond {
			t.Errorf("event %d time drifted by %v", i, drift)
		}
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.jsonl")
	if err := os.WriteFile(bad, []byte("{\"event_type\":\"down\"}\nnot json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("loading malformed lines succeeded")
	}

	if _, err := Load(filepath.Join(dir, "missing.jsonl")); err == nil {
		t.Error("loading a missing file succeeded")
	}
}
