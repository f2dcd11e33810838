// Package word watches the typed character stream for whole words.
//
// Each registered word keeps its own character buffer. Printable keys
// append (uppercased while shift is held), modifiers are ignored, and
// any other named key clears the buffer. When a trigger key arrives
// with the buffer matching the word, the callback fires. Abbreviations
// build on the same mechanism: the callback erases the typed source
// and writes the replacement.
package word
