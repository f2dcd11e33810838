// Package backend abstracts the platform keyboard layer.
//
// A Backend produces raw transitions from the OS and synthesizes key
// presses back into it. Implementations cover the global OS hook, raw
// evdev devices on Linux, a terminal capture mode, and an in-memory
// fake for tests. The emit callback handed to Start returns the
// suppression verdict; backends that can block delivery honor it and
// the rest ignore it.
package backend
