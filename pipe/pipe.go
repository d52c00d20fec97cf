// Package pipe implements the propagation-delay element of the network
// model: on receiving a packet, a [Pipe] schedules delivery to the next
// hop on the packet's own [packet.Route] after a fixed link delay.
package pipe

import (
	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/packet"
	"github.com/aeolus-sim/ndpsim/simtime"
)

// inFlight is a one-shot [eventlist.Source]: it exists only to carry a
// single packet through the gap between receipt and delivery, and is
// discarded once it fires. Pipes never drop, and multiple packets may be
// in flight simultaneously, each with its own inFlight event — ordering
// between them is preserved because scheduling at monotonic now+delay
// preserves FIFO when delay is constant.
type inFlight struct {
	pkt *packet.Packet
}

func (f *inFlight) DoNextEvent() {
	f.pkt.Route.Forward(f.pkt)
}

// Pipe models pure propagation delay between two network elements. Unlike
// a queue, a Pipe has no fixed downstream of its own: a physical link may
// be shared by many routes that diverge on the far side of it (a link's
// pipe is cached and reused per [Topology] link), so the next hop must
// come from the packet's own Route, not from the Pipe.
type Pipe struct {
	name  string
	delay simtime.Time
	list  *eventlist.List
}

// New creates a Pipe named name that delays delivery by delay, scheduling
// completions on list.
func New(name string, delay simtime.Time, list *eventlist.List) *Pipe {
	return &Pipe{name: name, delay: delay, list: list}
}

// NodeName implements [packet.Sink].
func (p *Pipe) NodeName() string { return p.name }

// ReceivePacket implements [packet.Sink]: it schedules delivery of pkt to
// the next hop on pkt.Route at now+delay. The call never blocks and never
// drops.
func (p *Pipe) ReceivePacket(pkt *packet.Packet) {
	f := &inFlight{pkt: pkt}
	// Each in-flight packet gets its own Source, so concurrent in-flight
	// packets don't collide under the event list's one-pending-per-source
	// rule.
	_ = p.list.In(f, p.delay)
}

// Delay returns the pipe's fixed propagation delay.
func (p *Pipe) Delay() simtime.Time { return p.delay }
