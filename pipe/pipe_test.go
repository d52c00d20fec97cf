package pipe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/packet"
	"github.com/aeolus-sim/ndpsim/pipe"
	"github.com/aeolus-sim/ndpsim/simtime"
)

type recordingSink struct {
	name     string
	received []*packet.Packet
	arrived  []simtime.Time
	list     *eventlist.List
}

func (s *recordingSink) NodeName() string { return s.name }
func (s *recordingSink) ReceivePacket(p *packet.Packet) {
	s.received = append(s.received, p)
	s.arrived = append(s.arrived, s.list.Now())
}

// onRoute builds a packet already positioned as if it just arrived at p:
// its Route lists p followed by sink, and Hop already points past p, the
// way [packet.Route.Forward] leaves it after delivering to a hop.
func onRoute(p *pipe.Pipe, sink packet.Sink, pkt *packet.Packet) *packet.Packet {
	pkt.Route = packet.NewRoute(p, sink)
	pkt.Hop = 1
	return pkt
}

func TestPipeDelaysDelivery(t *testing.T) {
	l := eventlist.New(eventlist.WithEndTime(simtime.Time(10_000)))
	sink := &recordingSink{name: "dst", list: l}
	p := pipe.New("link0", simtime.Time(1000), l)

	pkt := onRoute(p, sink, &packet.Packet{FlowID: 1})
	p.ReceivePacket(pkt)
	l.Run()

	require.Len(t, sink.received, 1)
	assert.Same(t, pkt, sink.received[0])
	assert.Equal(t, simtime.Time(1000), sink.arrived[0])
}

func TestPipePreservesFIFOForConstantDelay(t *testing.T) {
	l := eventlist.New(eventlist.WithEndTime(simtime.Time(10_000)))
	sink := &recordingSink{name: "dst", list: l}
	p := pipe.New("link0", simtime.Time(500), l)

	first := onRoute(p, sink, &packet.Packet{SeqNo: 1})
	second := onRoute(p, sink, &packet.Packet{SeqNo: 2})
	p.ReceivePacket(first)
	p.ReceivePacket(second)
	l.Run()

	require.Len(t, sink.received, 2)
	assert.Equal(t, uint64(1), sink.received[0].SeqNo)
	assert.Equal(t, uint64(2), sink.received[1].SeqNo)
}

func TestPipeDeliversToNextHopFromPacketRoute(t *testing.T) {
	l := eventlist.New(eventlist.WithEndTime(simtime.Time(10_000)))
	sinkA := &recordingSink{name: "a", list: l}
	sinkB := &recordingSink{name: "b", list: l}
	p := pipe.New("shared-link", simtime.Time(200), l)

	// Two packets traverse the same Pipe but diverge to different next
	// hops, the way a shared physical link's Pipe serves multiple routes.
	toA := onRoute(p, sinkA, &packet.Packet{FlowID: 1})
	toB := onRoute(p, sinkB, &packet.Packet{FlowID: 2})
	p.ReceivePacket(toA)
	p.ReceivePacket(toB)
	l.Run()

	require.Len(t, sinkA.received, 1)
	assert.Same(t, toA, sinkA.received[0])
	require.Len(t, sinkB.received, 1)
	assert.Same(t, toB, sinkB.received[0])
}
