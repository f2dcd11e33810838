package key

import "testing"

func TestSameKey(t *testing.T) {
	tests := []struct {
		name string
		a, b Event
		want bool
	}{
		{
			name: "same code",
			a:    Event{Code: 30, Names: []string{"a"}},
			b:    Event{Code: 30, Names: []string{"unknown"}},
			want: true,
		},
		{
			name: "shared alias different code",
			a:    Event{Code: 42, Names: []string{"left shift", "shift"}},
			b:    Event{Code: 54, Names: []string{"right shift", "shift"}},
			want: true,
		},
		{
			name: "different keys",
			a:    Event{Code: 30, Names: []string{"a"}},
			b:    Event{Code: 48, Names: []string{"b"}},
			want: false,
		},
		{
			name: "unknown aliases never match",
			a:    Event{Code: 1, Names: []string{"unknown"}},
			b:    Event{Code: 2, Names: []string{"unknown"}},
			want: false,
		},
	}

	for _, tt := range tests {
		if got := SameKey(&tt.a, &tt.b); got != tt.want {
			t.Errorf("%s: SameKey = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindDown.String() != "down" || KindUp.String() != "up" || KindDouble.String() != "double" {
		t.Error("unexpected kind names")
	}

	for _, s := range []string{"down", "up", "double"} {
		k, err := KindFromString(s)
		if err != nil {
			t.Errorf("KindFromString(%q) error = %v", s, err)
		}
		if k.String() != s {
			t.Errorf("round trip %q = %q", s, k.String())
		}
	}

	if _, err := KindFromString("sideways"); err == nil {
		t.Error("KindFromString(sideways) should fail")
	}
}

func TestEventName(t *testing.T) {
	e := &Event{}
	if e.Name() != "unknown" {
		t.Errorf("empty event name = %q, want unknown", e.Name())
	}

	e = &Event{Names: []string{"left shift", "shift"}}
	if e.Name() != "left shift" {
		t.Errorf("name = %q, want most specific alias", e.Name())
	}
	if !e.HasName("shift") || e.HasName("ctrl") {
		t.Error("HasName mismatch")
	}
}
