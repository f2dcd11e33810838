package hotkey

import (
	"time"

	"github.com/dshills/keytap/internal/key"
)

// StepChecker answers whether the pressed set currently matches a step
// exactly. Implemented by the pressed-state tracker.
type StepChecker interface {
	StepSatisfied(step key.Step) bool
}

// Matcher is the per-registration state machine. It is owned by its
// registration and mutated only on the dispatch goroutine.
type Matcher struct {
	steps   []key.Step
	cursor  int
	last    time.Time
	timeout time.Duration // 0 means no timeout
}

// NewMatcher creates a matcher over parsed steps. A zero timeout means
// infinite patience between steps.
func NewMatcher(steps []key.Step, timeout time.Duration) *Matcher {
	return &Matcher{steps: steps, timeout: timeout}
}

// HandleDown consumes one down event and reports whether the full
// sequence completed. On completion the cursor resets so the hotkey can
// fire again.
//
// An unexpected key (or a step gap exceeding the timeout) resets the
// cursor and re-evaluates the same event once against step zero; the
// retry terminates because a cursor of zero cannot reset again.
// A gap exactly equal to the timeout still counts as within it.
func (m *Matcher) HandleDown(ev *key.Event, pressed StepChecker) bool {
	for {
		expired := m.cursor > 0 && m.timeout > 0 && ev.Time.Sub(m.last) > m.timeout
		if expired || !m.steps[m.cursor].Contains(ev) {
			if m.cursor > 0 {
				m.cursor = 0
				continue
			}
			return false
		}

		m.last = ev.Time
		if pressed.StepSatisfied(m.steps[m.cursor]) {
			m.cursor++
			if m.cursor == len(m.steps) {
				m.cursor = 0
				return true
			}
		}
		return false
	}
}

// Reset returns the matcher to its initial state.
func (m *Matcher) Reset() {
	m.cursor = 0
	m.last = time.Time{}
}

// Cursor returns the current step index. Exposed for tests.
func (m *Matcher) Cursor() int {
	return m.cursor
}

// Steps returns the parsed steps.
func (m *Matcher) Steps() []key.Step {
	return m.steps
}
