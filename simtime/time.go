// Package simtime defines the monotonic simulated-time representation used
// throughout the simulator: an integer count of picoseconds.
//
// Every clock-adjacent quantity in the simulator (link delay, service time,
// RTT, event-list due times) is a [Time]. Picosecond resolution keeps
// per-byte transmission-time arithmetic (8*size*1e12/bitrate) exact for the
// bitrates and packet sizes datacenter transport research cares about,
// without resorting to floating point.
package simtime

import "fmt"

// Time is a simulated instant or duration, in picoseconds.
//
// The zero value is time zero. Time is never negative in a well-formed
// simulation.
type Time int64

const (
	picosPerNano  = 1_000
	picosPerMicro = 1_000 * picosPerNano
	picosPerMilli = 1_000 * picosPerMicro
	picosPerSec   = 1_000 * picosPerMilli
)

// FromSeconds converts a floating-point seconds value to [Time].
func FromSeconds(s float64) Time { return Time(s * picosPerSec) }

// FromMillis converts a floating-point milliseconds value to [Time].
func FromMillis(ms float64) Time { return Time(ms * picosPerMilli) }

// FromMicros converts a floating-point microseconds value to [Time].
func FromMicros(us float64) Time { return Time(us * picosPerMicro) }

// FromNanos converts an integer nanoseconds value to [Time], losslessly.
func FromNanos(ns int64) Time { return Time(ns * picosPerNano) }

// Seconds returns t as floating-point seconds.
func (t Time) Seconds() float64 { return float64(t) / picosPerSec }

// Millis returns t as floating-point milliseconds.
func (t Time) Millis() float64 { return float64(t) / picosPerMilli }

// Micros returns t as floating-point microseconds.
func (t Time) Micros() float64 { return float64(t) / picosPerMicro }

// Nanos returns t as integer nanoseconds, truncating any sub-nanosecond
// remainder (none exists for values produced by [FromNanos]).
func (t Time) Nanos() int64 { return int64(t) / picosPerNano }

// Picos returns t as a raw int64 count of picoseconds.
func (t Time) Picos() int64 { return int64(t) }

func (t Time) String() string {
	return fmt.Sprintf("%.6fus", t.Micros())
}
