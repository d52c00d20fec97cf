package eventlist

import (
	"container/heap"

	"github.com/aeolus-sim/ndpsim/simtime"
)

// Source is anything that can have a future callback scheduled against it.
// DoNextEvent is invoked by [List.Next] when the source's due time arrives.
type Source interface {
	DoNextEvent()
}

// entry is one pending (due, source) pair. seq is the insertion sequence,
// used as a stable tie-break for entries sharing the same due time.
type entry struct {
	due    simtime.Time
	seq    uint64
	source Source
	index  int // current index in the heap, maintained by heapImpl
}

// heapImpl implements [container/heap.Interface] over a slice of *entry.
type heapImpl []*entry

func (h heapImpl) Len() int { return len(h) }

func (h heapImpl) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h heapImpl) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *heapImpl) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *heapImpl) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// List is a time-ordered scheduler of future callbacks: the event list
// driving the simulation. The zero value is not usable; construct with
// [New].
type List struct {
	now     simtime.Time
	endTime simtime.Time
	hasEnd  bool
	nextSeq uint64
	heap    heapImpl
	pending map[Source]*entry
}

// Option configures a [List] at construction time.
type Option func(*List)

// WithEndTime sets the simulation's end time at construction, equivalent to
// calling [List.SetEndTime] immediately after [New].
func WithEndTime(t simtime.Time) Option {
	return func(l *List) {
		l.endTime = t
		l.hasEnd = true
	}
}

// New creates an empty [List] with now = 0.
func New(opts ...Option) *List {
	l := &List{
		heap:    make(heapImpl, 0),
		pending: make(map[Source]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the current simulated time.
func (l *List) Now() simtime.Time { return l.now }

// SetEndTime sets the upper bound on simulated time: [List.Next] returns
// false once now would exceed t. Returns [ErrEndTimeInPast] if t < Now().
func (l *List) SetEndTime(t simtime.Time) error {
	if t < l.now {
		return ErrEndTimeInPast
	}
	l.endTime = t
	l.hasEnd = true
	return nil
}

// At registers source's callback to fire at simulated time due. Only one
// event may be pending per source; a second call for the same source
// replaces the first (and keeps the first's relative insertion order only
// if it is the one that survives — i.e. the replacement gets a fresh,
// later insertion sequence). Returns [ErrPastTime] if due < Now().
func (l *List) At(source Source, due simtime.Time) error {
	if due < l.now {
		return ErrPastTime
	}
	if e, ok := l.pending[source]; ok {
		e.due = due
		e.seq = l.nextSeq
		l.nextSeq++
		heap.Fix(&l.heap, e.index)
		return nil
	}
	e := &entry{due: due, seq: l.nextSeq, source: source}
	l.nextSeq++
	l.pending[source] = e
	heap.Push(&l.heap, e)
	return nil
}

// In registers source's callback to fire delta after now, i.e. at
// Now()+delta. Shorthand for At(source, Now()+delta).
func (l *List) In(source Source, delta simtime.Time) error {
	return l.At(source, l.now+delta)
}

// Cancel removes any pending event for source. Idempotent: canceling a
// source with no pending event is a no-op.
func (l *List) Cancel(source Source) {
	e, ok := l.pending[source]
	if !ok {
		return
	}
	heap.Remove(&l.heap, e.index)
	delete(l.pending, source)
}

// Pending reports whether source currently has an event scheduled.
func (l *List) Pending(source Source) bool {
	_, ok := l.pending[source]
	return ok
}

// Next advances now to the earliest pending due time, pops that event, and
// invokes its callback, returning true. It returns false without advancing
// now if the list is empty, or if the earliest pending due time would
// exceed the configured end time.
//
// The callback is free to schedule further events (including against the
// source just popped) — re-entrant scheduling during a callback is
// required and supported: [List.pending] is updated before the callback
// runs, so a callback that reschedules its own source starts from a clean
// slate.
func (l *List) Next() bool {
	if l.heap.Len() == 0 {
		return false
	}
	next := l.heap[0]
	if l.hasEnd && next.due > l.endTime {
		return false
	}
	heap.Pop(&l.heap)
	delete(l.pending, next.source)
	l.now = next.due
	next.source.DoNextEvent()
	return true
}

// Run drains the list by calling [List.Next] until it returns false.
func (l *List) Run() {
	for l.Next() {
	}
}
