package dispatch

import "sync/atomic"

// Metrics holds dispatch counters. All methods are safe for concurrent
// use.
type Metrics struct {
	events     atomic.Uint64
	suppressed atomic.Uint64
	panics     atomic.Uint64
	callbacks  atomic.Uint64
	dropped    atomic.Uint64
}

// NewMetrics creates a zeroed metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordEvent counts one dispatched event.
func (m *Metrics) RecordEvent() { m.events.Add(1) }

// RecordSuppressed counts one suppressed event.
func (m *Metrics) RecordSuppressed() { m.suppressed.Add(1) }

// RecordPanic counts one recovered handler panic.
func (m *Metrics) RecordPanic() { m.panics.Add(1) }

// RecordCallback counts one callback handed to the pool.
func (m *Metrics) RecordCallback() { m.callbacks.Add(1) }

// RecordDropped counts one callback dropped by a full pool.
func (m *Metrics) RecordDropped() { m.dropped.Add(1) }

// Events returns the number of dispatched events.
func (m *Metrics) Events() uint64 { return m.events.Load() }

// Suppressed returns the number of suppressed events.
func (m *Metrics) Suppressed() uint64 { return m.suppressed.Load() }

// Panics returns the number of recovered handler panics.
func (m *Metrics) Panics() uint64 { return m.panics.Load() }

// Callbacks returns the number of callbacks submitted.
func (m *Metrics) Callbacks() uint64 { return m.callbacks.Load() }

// Dropped returns the number of callbacks dropped.
func (m *Metrics) Dropped() uint64 { return m.dropped.Load() }
