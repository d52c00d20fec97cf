// Package eventlist provides the time-ordered scheduler that drives the
// simulation: a min-heap of (due time, source) pairs, popped one at a time
// by [List.Next].
//
// # Architecture
//
// [List] owns a [container/heap] over entries keyed by (due, insertion
// sequence), giving FIFO tie-break ordering for events scheduled at the
// same simulated instant — required for reproducible runs. Each [Source]
// may have at most one event pending at a time; a second [List.At] call
// for the same source replaces the first (see [List.Cancel]).
//
// # Execution model
//
// The simulator is single-threaded and cooperative: [List.Next] advances
// now to the earliest pending due time, pops that entry, and invokes its
// callback. The callback runs to completion before [List.Next] returns; it
// may itself schedule further events, including at the current now, which
// then run after it in insertion order. There is no concurrent access to a
// [List] from multiple goroutines.
package eventlist
