package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/key"
)

func TestFakeInjectDelivers(t *testing.T) {
	f := NewFake(zerolog.Nop())
	at := time.Unix(500, 0)
	f.SetClock(func() time.Time { return at })

	var got []key.Raw
	if err := f.Start(func(r key.Raw) bool {
		got = append(got, r)
		return r.Code == 30
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !f.InjectName(key.KindDown, "a") {
		t.Error("verdict for a not propagated")
	}
	if f.InjectName(key.KindDown, "b") {
		t.Error("verdict for b not propagated")
	}

	if len(got) != 2 {
		t.Fatalf("delivered %d events, want 2", len(got))
	}
	if got[0].Code != 30 || got[0].Kind != key.KindDown || !got[0].Time.Equal(at) {
		t.Errorf("first raw = %+v", got[0])
	}
}

func TestFakeStartTwice(t *testing.T) {
	f := NewFake(zerolog.Nop())
	emit := func(key.Raw) bool { return false }
	if err := f.Start(emit); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.Start(emit); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("got %v, want ErrAlreadyStarted", err)
	}
	if err := f.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := f.Start(emit); err != nil {
		t.Fatalf("Start after Stop: %v", err)
	}
}

func TestFakeRecordsSynthesis(t *testing.T) {
	f := NewFake(zerolog.Nop())
	f.Press(30)
	f.Release(30)
	f.TypeUnicode('x')

	want := []SynthCall{
		{Kind: SynthPress, Code: 30},
		{Kind: SynthRelease, Code: 30},
		{Kind: SynthRune, Rune: 'x'},
	}
	calls := f.Calls()
	if len(calls) != len(want) {
		t.Fatalf("recorded %d calls, want %d", len(calls), len(want))
	}
	for i, call := range calls {
		if call != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, call, want[i])
		}
	}

	f.ResetCalls()
	if len(f.Calls()) != 0 {
		t.Error("calls survive ResetCalls")
	}
}

func TestFakeLoopSynthesized(t *testing.T) {
	f := NewFake(zerolog.Nop())
	f.LoopSynthesized(true)

	var got []key.Raw
	f.Start(func(r key.Raw) bool {
		got = append(got, r)
		return false
	})

	f.Press(30)
	f.Release(30)
	if len(got) != 2 || got[0].Kind != key.KindDown || got[1].Kind != key.KindUp {
		t.Fatalf("looped events = %+v", got)
	}
}

func TestFakeMapName(t *testing.T) {
	f := NewFake(zerolog.Nop())

	codes, err := f.MapName("CTRL")
	if err != nil {
		t.Fatalf("MapName: %v", err)
	}
	if len(codes) == 0 || codes[0] != 29 {
		t.Errorf("ctrl codes = %v, want leading 29", codes)
	}

	if _, err := f.MapName("no such key"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("got %v, want ErrUnknownKey", err)
	}
}

func TestFakeDecode(t *testing.T) {
	f := NewFake(zerolog.Nop())

	names, keypad := f.Decode(29)
	if len(names) == 0 || names[0] != "ctrl" || keypad {
		t.Errorf("Decode(29) = %v keypad=%v", names, keypad)
	}

	names, keypad = f.Decode(71)
	if names[0] != "7" || !keypad {
		t.Errorf("Decode(71) = %v keypad=%v", names, keypad)
	}

	names, _ = f.Decode(9999)
	if len(names) != 1 || names[0] != "unknown" {
		t.Errorf("Decode(9999) = %v, want unknown", names)
	}
}

func TestLayoutAliasesResolve(t *testing.T) {
	cases := []struct {
		name string
		code key.Code
	}{
		{"enter", 28},
		{"left shift", 42},
		{"right shift", 54},
		{"space", 57},
		{"!", 2},
		{"windows", 125},
	}
	for _, c := range cases {
		codes, ok := layoutCodes(c.name)
		if !ok {
			t.Errorf("%q has no codes", c.name)
			continue
		}
		if codes[0] != c.code {
			t.Errorf("%q resolved to %v, want leading %d", c.name, codes, c.code)
		}
	}
}
