// Package hotkey implements chorded and multi-step hotkey matching.
//
// Each registration owns a small state machine that consumes the
// dispatched down-event stream: a cursor walks the parsed steps,
// advancing when every key of the current step is held, resetting on
// mismatch or timeout. An aborted sequence re-evaluates the same event
// against the reset state, so the key that broke one attempt can start
// the next.
//
// Matchers are independent: two hotkeys sharing a prefix both run and
// may both fire. Exclusivity, where needed, comes from registering the
// hotkey as blocking so the suppressed event never reaches lower
// handlers.
package hotkey
