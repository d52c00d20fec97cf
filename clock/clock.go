// Package clock implements the simulator's heartbeat event source.
//
// A [Clock] is not semantically required by the AeolusQueue or the event
// list — it exists because every simulation driver constructs one, to
// force progress of time-based loggers and bound the largest idle skip
// between otherwise-quiet periods.
package clock

import (
	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/simtime"
)

// Clock is a periodic event source: its callback re-arms itself every
// Period until [Clock.Stop] is called.
type Clock struct {
	period simtime.Time
	list   *eventlist.List
	onTick func(simtime.Time)
	active bool
}

// New creates a Clock that re-arms itself every period on list, invoking
// onTick (if non-nil) with the current simulated time on every tick.
// The clock is not armed until [Clock.Start] is called.
func New(period simtime.Time, list *eventlist.List, onTick func(simtime.Time)) *Clock {
	return &Clock{period: period, list: list, onTick: onTick}
}

// Start arms the clock, scheduling its first tick one period from now.
func (c *Clock) Start() {
	c.active = true
	_ = c.list.In(c, c.period)
}

// Stop disarms the clock; any pending tick is canceled.
func (c *Clock) Stop() {
	c.active = false
	c.list.Cancel(c)
}

// DoNextEvent implements [eventlist.Source]. It invokes onTick and, unless
// stopped, re-arms itself for another period.
func (c *Clock) DoNextEvent() {
	if c.onTick != nil {
		c.onTick(c.list.Now())
	}
	if c.active {
		_ = c.list.In(c, c.period)
	}
}
