// Package suppress decides, per incoming key, whether to block it from
// reaching the rest of the OS.
//
// Registered sequences form a trie over canonical key names. While the
// input stream follows a registered sequence the keys are swallowed and
// buffered; the moment the stream diverges the buffered prefix is
// replayed through the synthesis interface in original order, so a
// false-positive prefix is never lost. A re-entrancy guard disables
// suppression while replaying; replayed events re-enter the hook like
// any other input and would otherwise be captured again forever.
package suppress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/keytap/internal/key"
)

// Sender synthesizes key transitions. Implemented by the platform
// backend.
type Sender interface {
	Press(code key.Code) error
	Release(code key.Code) error
}

// node is one trie position. The timeout is the maximum requested by
// any sequence passing through the node.
type node struct {
	timeout  time.Duration
	children map[string]*node
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// buffered is one swallowed transition awaiting a verdict.
type buffered struct {
	code key.Code
	name string
	up   bool
}

// Suppressor tracks the current position in the trie, the keys
// swallowed so far in the tentative sequence, and the keys whose downs
// were consumed for good by a completed sequence.
type Suppressor struct {
	mu       sync.Mutex
	root     *node
	cur      *node
	advanced time.Time
	buffer   []buffered
	consumed map[key.Code]int

	replaying atomic.Int64
	sender    Sender
	log       zerolog.Logger
}

// New creates a suppressor that replays through sender.
func New(sender Sender, log zerolog.Logger) *Suppressor {
	root := newNode()
	return &Suppressor{
		root:     root,
		cur:      root,
		consumed: make(map[key.Code]int),
		sender:   sender,
		log:      log,
	}
}

// AddSequence registers a key-name sequence for suppression. Node
// timeouts along the path keep the maximum requested by any sequence.
func (s *Suppressor) AddSequence(names []string, timeout time.Duration) {
	if len(names) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.root
	for _, name := range names {
		name = key.Normalize(name)
		child, ok := n.children[name]
		if !ok {
			child = newNode()
			n.children[name] = child
		}
		if timeout > child.timeout {
			child.timeout = timeout
		}
		n = child
	}
	n.terminal = true
}

// Clear drops every registered sequence and any tentative state. Keys
// whose downs were already swallowed still get their releases
// swallowed, so no orphaned key-up escapes.
func (s *Suppressor) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = newNode()
	s.cur = s.root
	s.consumeBufferLocked()
}

// Active reports whether the suppressor can still swallow anything:
// sequences are registered, or already-swallowed keys await their
// releases.
func (s *Suppressor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.root.children) > 0 || len(s.buffer) > 0 || len(s.consumed) > 0
}

// Replaying reports whether the guard is held.
func (s *Suppressor) Replaying() bool {
	return s.replaying.Load() > 0
}

// WithReplay runs fn with the re-entrancy guard held, so synthesized
// input produced by fn passes through unexamined. The engine uses this
// for abbreviation replacement and programmatic typing.
// The guard counts holders, so concurrent callers compose.
func (s *Suppressor) WithReplay(fn func()) {
	s.replaying.Add(1)
	defer s.replaying.Add(-1)
	fn()
}

// Allow decides whether the event may continue to the rest of the
// system. False means swallow.
func (s *Suppressor) Allow(ev *key.Event) bool {
	if ev.Synthetic || s.replaying.Load() > 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.root.children) == 0 && len(s.buffer) == 0 && len(s.consumed) == 0 {
		return true
	}

	if !ev.IsDown() {
		return s.allowUpLocked(ev)
	}
	return s.allowDownLocked(ev)
}

// allowUpLocked swallows releases for keys whose press was swallowed,
// so no orphaned key-up escapes. A press still in the tentative buffer
// gets its release buffered alongside it; a press consumed by a
// completed sequence gets its release swallowed outright. Other
// releases pass through.
func (s *Suppressor) allowUpLocked(ev *key.Event) bool {
	for _, b := range s.buffer {
		if !b.up && b.code == ev.Code {
			s.buffer = append(s.buffer, buffered{code: ev.Code, name: ev.Name(), up: true})
			return false
		}
	}
	if n := s.consumed[ev.Code]; n > 0 {
		if n == 1 {
			delete(s.consumed, ev.Code)
		} else {
			s.consumed[ev.Code] = n - 1
		}
		return false
	}
	return true
}

func (s *Suppressor) allowDownLocked(ev *key.Event) bool {
	if child := s.matchLocked(s.cur, ev); child != nil {
		s.advanceLocked(child, ev)
		return false
	}

	// The stream diverged: give back everything swallowed so far,
	// then let the current key try again as a sequence start.
	s.replayLocked()
	if child := s.matchLocked(s.root, ev); child != nil {
		s.advanceLocked(child, ev)
		return false
	}
	return true
}

// matchLocked finds a child continuing the sequence from n, honoring
// the node timeout when mid-sequence.
func (s *Suppressor) matchLocked(n *node, ev *key.Event) *node {
	for _, name := range ev.Names {
		child, ok := n.children[name]
		if !ok {
			continue
		}
		if n != s.root && n.timeout > 0 && ev.Time.Sub(s.advanced) >= n.timeout {
			return nil
		}
		return child
	}
	return nil
}

// advanceLocked moves the cursor into child and buffers the swallowed
// key. Reaching a terminal leaf consumes the sequence: the keys stay
// suppressed for good, with their still-held downs remembered so the
// eventual releases are swallowed too.
func (s *Suppressor) advanceLocked(child *node, ev *key.Event) {
	s.cur = child
	s.advanced = ev.Time
	s.buffer = append(s.buffer, buffered{code: ev.Code, name: ev.Name()})

	if child.terminal {
		s.consumeBufferLocked()
		if len(child.children) == 0 {
			s.cur = s.root
		}
	}
}

// consumeBufferLocked retires the tentative buffer: every down without
// a matching buffered up is still held, so its release is owed a
// swallow.
func (s *Suppressor) consumeBufferLocked() {
	for _, b := range s.buffer {
		if b.up {
			s.consumed[b.code]--
			if s.consumed[b.code] <= 0 {
				delete(s.consumed, b.code)
			}
		} else {
			s.consumed[b.code]++
		}
	}
	s.buffer = nil
}

// replayLocked re-synthesizes the swallowed prefix in original order
// and resets the tentative state. The guard stays held for the whole
// replay so the synthesized events are not captured again.
func (s *Suppressor) replayLocked() {
	buffer := s.buffer
	s.buffer = nil
	s.cur = s.root
	if len(buffer) == 0 {
		return
	}

	s.replaying.Add(1)
	defer s.replaying.Add(-1)

	for _, b := range buffer {
		var err error
		if b.up {
			err = s.sender.Release(b.code)
		} else {
			err = s.sender.Press(b.code)
		}
		if err != nil {
			s.log.Warn().Str("key", b.name).Err(err).Msg("replay failed")
		}
	}
}
