// Package record captures event streams and plays them back.
//
// A Recorder is a dispatch handler that appends every observed event
// while armed. A recording can be replayed through the platform
// synthesis interface with the original timing, scaled or removed, and
// persisted as newline-delimited JSON.
package record
