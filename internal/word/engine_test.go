package word

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/dispatch"
	"github.com/dshills/keytap/internal/key"
)

type fakeReplacer struct {
	backspaces int
	text       string
	calls      int
}

func (f *fakeReplacer) Replace(backspaces int, text string) error {
	f.backspaces = backspaces
	f.text = text
	f.calls++
	return nil
}

type typist struct {
	engine  *Engine
	pool    *dispatch.Pool
	at      time.Time
	shifted bool
}

func newTypist(t *testing.T, replacer Replacer) *typist {
	t.Helper()
	pool := dispatch.NewPool(dispatch.WithPoolWorkers(1))
	pool.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = pool.Stop(ctx)
	})

	ty := &typist{pool: pool, at: time.Unix(100, 0)}
	ty.engine = NewEngine(func() bool { return ty.shifted }, replacer, pool, zerolog.Nop())
	return ty
}

func (ty *typist) key(name string) {
	ty.at = ty.at.Add(10 * time.Millisecond)
	ty.engine.Handler(&key.Event{Kind: key.KindDown, Code: 1, Names: []string{name}, Time: ty.at})
}

func (ty *typist) typeWord(word string) {
	for _, r := range word {
		ty.key(string(r))
	}
}

// drain waits until every callback submitted so far has run. The pool
// has a single worker, so a barrier callback completing means everything
// before it completed too.
func (ty *typist) drain(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	if err := ty.pool.Submit(func() { close(done) }); err != nil {
		t.Fatalf("Submit barrier: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback pool stalled")
	}
}

func TestWordFiresOnTrigger(t *testing.T) {
	ty := newTypist(t, nil)
	fired := 0
	if err := ty.engine.AddWord("bird", func() { fired++ }, Options{}); err != nil {
		t.Fatalf("AddWord: %v", err)
	}

	ty.typeWord("bird")
	ty.drain(t)
	if fired != 0 {
		t.Fatal("fired before the trigger")
	}
	ty.key("space")
	ty.drain(t)
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}

	// enter is not a default trigger
	ty.typeWord("bird")
	ty.key("enter")
	ty.drain(t)
	if fired != 1 {
		t.Fatalf("fired on a non-trigger key")
	}
}

func TestWordCustomTriggers(t *testing.T) {
	ty := newTypist(t, nil)
	fired := 0
	ty.engine.AddWord("bird", func() { fired++ }, Options{Triggers: []string{"enter"}})

	ty.typeWord("bird")
	ty.key("enter")
	ty.drain(t)
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
}

func TestTriggersCanonicalized(t *testing.T) {
	ty := newTypist(t, nil)
	fired := 0
	ty.engine.AddWord("bird", func() { fired++ }, Options{Triggers: []string{"Return", " "}})

	ty.typeWord("bird")
	ty.key("enter")
	ty.typeWord("bird")
	ty.key("space")
	ty.drain(t)
	if fired != 2 {
		t.Fatalf("fired %d times, want 2", fired)
	}
}

func TestWordCaseSensitive(t *testing.T) {
	ty := newTypist(t, nil)
	fired := 0
	ty.engine.AddWord("Bird", func() { fired++ }, Options{})

	ty.typeWord("bird")
	ty.key("space")
	ty.drain(t)
	if fired != 0 {
		t.Fatal("lowercase input matched a capitalized word")
	}

	ty.shifted = true
	ty.key("b")
	ty.shifted = false
	ty.typeWord("ird")
	ty.key("space")
	ty.drain(t)
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
}

func TestNamedKeyClearsBuffer(t *testing.T) {
	ty := newTypist(t, nil)
	fired := 0
	ty.engine.AddWord("bird", func() { fired++ }, Options{})

	ty.typeWord("bir")
	ty.key("backspace")
	ty.key("d")
	ty.key("space")
	ty.drain(t)
	if fired != 0 {
		t.Fatal("fired despite an interrupting named key")
	}
}

func TestModifiersIgnored(t *testing.T) {
	ty := newTypist(t, nil)
	fired := 0
	ty.engine.AddWord("bird", func() { fired++ }, Options{})

	ty.typeWord("bi")
	ty.key("ctrl")
	ty.key("left shift")
	ty.typeWord("rd")
	ty.key("space")
	ty.drain(t)
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
}

func TestSyntheticEventsIgnored(t *testing.T) {
	ty := newTypist(t, nil)
	fired := 0
	ty.engine.AddWord("bird", func() { fired++ }, Options{})

	ty.typeWord("bi")

	// Engine-produced input between keystrokes must not touch the
	// buffer or act as a trigger.
	for _, name := range []string{"x", "space", "backspace"} {
		ty.at = ty.at.Add(10 * time.Millisecond)
		ty.engine.Handler(&key.Event{
			Kind: key.KindDown, Code: 1, Names: []string{name},
			Time: ty.at, Synthetic: true,
		})
	}

	ty.typeWord("rd")
	ty.key("space")
	ty.drain(t)
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
}

func TestTimeoutResetsBuffer(t *testing.T) {
	ty := newTypist(t, nil)
	fired := 0
	ty.engine.AddWord("bird", func() { fired++ }, Options{Timeout: 50 * time.Millisecond})

	ty.typeWord("bi")
	ty.at = ty.at.Add(time.Second)
	ty.typeWord("rd")
	ty.key("space")
	ty.drain(t)
	if fired != 0 {
		t.Fatal("fired across a timeout gap")
	}

	// negative timeout disables the gap check
	ty.engine.Remove("bird")
	ty.engine.AddWord("bird", func() { fired++ }, Options{Timeout: -1})
	ty.typeWord("bi")
	ty.at = ty.at.Add(time.Hour)
	ty.typeWord("rd")
	ty.key("space")
	ty.drain(t)
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
}

func TestMatchSuffix(t *testing.T) {
	ty := newTypist(t, nil)
	fired := 0
	ty.engine.AddWord("here", func() { fired++ }, Options{MatchSuffix: true})

	ty.typeWord("there")
	ty.key("space")
	ty.drain(t)
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
}

func TestDuplicateWordRejected(t *testing.T) {
	ty := newTypist(t, nil)
	ty.engine.AddWord("bird", func() {}, Options{})
	if err := ty.engine.AddWord("bird", func() {}, Options{}); !errors.Is(err, ErrDuplicateWord) {
		t.Fatalf("got %v, want ErrDuplicateWord", err)
	}
}

func TestRemoveWord(t *testing.T) {
	ty := newTypist(t, nil)
	ty.engine.AddWord("bird", func() {}, Options{})
	if err := ty.engine.Remove("bird"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := ty.engine.Remove("bird"); !errors.Is(err, ErrUnknownWord) {
		t.Fatalf("got %v, want ErrUnknownWord", err)
	}
	if ty.engine.Len() != 0 {
		t.Fatal("listener count not zero after removal")
	}
}

func TestAbbreviationReplaces(t *testing.T) {
	rep := &fakeReplacer{}
	ty := newTypist(t, rep)
	if err := ty.engine.AddAbbreviation("tm", "trademark", Options{}); err != nil {
		t.Fatalf("AddAbbreviation: %v", err)
	}

	ty.typeWord("tm")
	ty.key("space")
	ty.drain(t)
	if rep.calls != 1 {
		t.Fatalf("Replace called %d times, want 1", rep.calls)
	}
	if rep.backspaces != 3 {
		t.Errorf("backspaces = %d, want 3", rep.backspaces)
	}
	if rep.text != "trademark" {
		t.Errorf("text = %q, want %q", rep.text, "trademark")
	}
}
