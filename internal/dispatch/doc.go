// Package dispatch owns the event pump: a FIFO queue fed by the
// platform backend and drained by a single consumer goroutine that
// decodes raw events, updates the pressed-state tracker, and walks the
// registered handler chain in order.
//
// A handler returns true to stop propagation; the decision is also
// surfaced to the backend as "swallow this physical event". Handler
// panics are recovered and logged; a misbehaving handler never stops
// the pump.
//
// Two feed paths exist. Observe-only operation enqueues and returns
// immediately. When any blocking handler is registered the raw event is
// dispatched synchronously on the producer goroutine, because the
// backend needs the suppression decision before it lets the event
// through to the rest of the OS.
//
// The package also provides Pool, a bounded worker pool that runs
// hotkey and word-listener callbacks off the dispatch goroutine so a
// slow callback cannot stall key delivery.
package dispatch
