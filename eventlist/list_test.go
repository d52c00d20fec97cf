package eventlist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/simtime"
)

// recorder is a test [eventlist.Source] that appends a label to a shared
// trace each time it fires, and can optionally reschedule itself.
type recorder struct {
	label string
	trace *[]string
	list  *eventlist.List
	again func(r *recorder) // if non-nil, called from DoNextEvent to reschedule
}

func (r *recorder) DoNextEvent() {
	*r.trace = append(*r.trace, r.label)
	if r.again != nil {
		again := r.again
		r.again = nil
		again(r)
	}
}

func TestOrdering(t *testing.T) {
	var trace []string
	l := eventlist.New()

	a := &recorder{label: "a", trace: &trace}
	b := &recorder{label: "b", trace: &trace}
	c := &recorder{label: "c", trace: &trace}

	require.NoError(t, l.At(c, simtime.Time(30)))
	require.NoError(t, l.At(a, simtime.Time(10)))
	require.NoError(t, l.At(b, simtime.Time(10)))

	l.Run()

	// b was scheduled after a at the same due time, so FIFO tie-break puts
	// a first; c fires last because its due time is later.
	assert.Equal(t, []string{"a", "b", "c"}, trace)
}

func TestReentrantScheduling(t *testing.T) {
	var trace []string
	l := eventlist.New()

	var r *recorder
	r = &recorder{label: "tick", trace: &trace}
	count := 0
	var again func(self *recorder)
	again = func(self *recorder) {
		count++
		if count < 3 {
			self.again = again
			require.NoError(t, l.In(self, simtime.Time(5)))
		}
	}
	r.again = again
	require.NoError(t, l.In(r, simtime.Time(5)))

	l.Run()

	assert.Equal(t, []string{"tick", "tick", "tick"}, trace)
	assert.Equal(t, simtime.Time(15), l.Now())
}

func TestCancelIsIdempotent(t *testing.T) {
	var trace []string
	l := eventlist.New()
	r := &recorder{label: "x", trace: &trace}

	l.Cancel(r) // no-op, nothing scheduled
	require.NoError(t, l.At(r, simtime.Time(100)))
	assert.True(t, l.Pending(r))

	l.Cancel(r)
	l.Cancel(r) // idempotent
	assert.False(t, l.Pending(r))

	l.Run()
	assert.Empty(t, trace)
}

func TestScheduleReplacesPending(t *testing.T) {
	var trace []string
	l := eventlist.New()
	r := &recorder{label: "x", trace: &trace}

	require.NoError(t, l.At(r, simtime.Time(100)))
	require.NoError(t, l.At(r, simtime.Time(50))) // replaces, not a second event

	l.Run()
	assert.Equal(t, []string{"x"}, trace)
	assert.Equal(t, simtime.Time(50), l.Now())
}

func TestPastTimeIsRejected(t *testing.T) {
	var trace []string
	l := eventlist.New()
	r := &recorder{label: "x", trace: &trace}

	require.NoError(t, l.At(r, simtime.Time(10)))
	l.Run()

	err := l.At(r, l.Now()-1)
	assert.ErrorIs(t, err, eventlist.ErrPastTime)
}

func TestEndTimeStopsDispatch(t *testing.T) {
	var trace []string
	l := eventlist.New(eventlist.WithEndTime(simtime.Time(15)))
	a := &recorder{label: "a", trace: &trace}
	b := &recorder{label: "b", trace: &trace}

	require.NoError(t, l.At(a, simtime.Time(10)))
	require.NoError(t, l.At(b, simtime.Time(20)))

	l.Run()

	assert.Equal(t, []string{"a"}, trace)
	assert.True(t, l.Pending(b), "b should remain queued, not dispatched")
}

func TestNextFalseWhenEmpty(t *testing.T) {
	l := eventlist.New()
	assert.False(t, l.Next())
}
