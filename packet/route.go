package packet

import "fmt"

// Sink is the capability shared by every element a packet can be handed
// to: pipes, queues, and transport endpoints. ReceivePacket consumes
// ownership of p; it has no return value because the core never
// propagates errors upward through packet delivery (packet-level losses
// are counted internally, not reported to the caller).
type Sink interface {
	ReceivePacket(p *Packet)
	NodeName() string
}

// Route is a finite, ordered, immutable sequence of [Sink]s a packet
// traverses hop by hop, terminating in a transport sink. A Route is
// shared-immutable: many packets reference the same Route concurrently
// (in simulated time) and none of them mutate it — each packet carries its
// own [Packet.Hop] cursor instead.
type Route struct {
	hops []Sink
}

// NewRoute builds an immutable Route from hops, in traversal order.
func NewRoute(hops ...Sink) *Route {
	cp := make([]Sink, len(hops))
	copy(cp, hops)
	return &Route{hops: cp}
}

// Size returns the number of hops in the route.
func (r *Route) Size() int { return len(r.hops) }

// At returns the sink at index i. It panics if i is out of range: a route
// index overrun is a simulator-invariant violation, not recoverable data.
func (r *Route) At(i int) Sink {
	if i < 0 || i >= len(r.hops) {
		panic(fmt.Sprintf("packet: route index %d out of range [0,%d)", i, len(r.hops)))
	}
	return r.hops[i]
}

// Forward delivers p to the sink at its current [Packet.Hop] index and
// advances the cursor by one, so the next Forward call reaches the
// following hop. The first Forward on a fresh packet (Hop==0) delivers to
// the route's first sink. It panics if Hop is already at or past the end
// of the route — a route overrun is a simulator-invariant violation.
func (r *Route) Forward(p *Packet) {
	next := r.At(int(p.Hop))
	p.Hop++
	next.ReceivePacket(p)
}
