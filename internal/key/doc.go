// Package key defines the canonical key event model shared by every part
// of the engine: key codes, event kinds, the name canonicalization table,
// and the hotkey specification grammar.
//
// Raw events arrive from a platform backend as (kind, code, time) tuples.
// Decoding attaches the canonical alias names for the code, producing an
// Event. Two events refer to the same key when they share a code or any
// alias name.
//
// Hotkey specifications use a small grammar: steps separated by ",",
// keys within a step joined by "+", names case-insensitive and run
// through Normalize. "ctrl+shift+a, s" is a two-step hotkey whose first
// step is a three-key chord.
package key
