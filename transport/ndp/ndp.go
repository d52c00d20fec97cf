// Package ndp provides minimal, conformant stand-ins for an NDP transport
// source and sink: enough to drive packets end to end through a topology so
// routes, pipes, and queues can be exercised by the CLI and by tests. The
// NDP congestion-control algorithm itself (credit-based pull, RTT
// estimation, retransmission timers) is out of scope, so Source sends its
// whole window up front and Sink acknowledges every DATA/HEADER it
// receives, with no adaptive behaviour in between.
package ndp

import (
	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/internal/obslog"
	"github.com/aeolus-sim/ndpsim/packet"
	"github.com/aeolus-sim/ndpsim/simtime"
)

// DataPacketSize is the MTU-sized payload this package uses for every DATA
// packet it generates, matching the original topology's fixed 1500-byte
// packet size.
const DataPacketSize uint32 = 1500

// Source is a minimal NDP sender: given a flow size (in bytes) and an
// initial window (in packets), it emits that many DATA packets along
// routeOut starting at a scheduled start time, then stops — no congestion
// control, no retransmission. Completed flows are observable via
// [Source.Done].
type Source struct {
	name string

	flowID   uint64
	flowSize uint64
	cwnd     uint32

	routeOut *packet.Route
	list     *eventlist.List
	log      *obslog.Logger

	sent       uint64
	acked      uint64
	nacked     uint64
	headers    uint64
	started    bool
	startEvent *startTrigger
}

type startTrigger struct{ src *Source }

func (s *startTrigger) DoNextEvent() { s.src.emitWindow() }

// New constructs a Source that will send up to cwnd MTU-sized DATA packets
// of a flowSize-byte flow along routeOut, the moment [Source.Start] fires.
// routeOut's final hop is typically a [Sink], which answers each
// DATA/HEADER packet along its own return route toward this Source — see
// [NewSink] and [Sink.SetRoute] for how the two are wired.
func New(name string, flowID, flowSize uint64, cwnd uint32, routeOut *packet.Route, list *eventlist.List, log *obslog.Logger) *Source {
	return &Source{
		name:     name,
		flowID:   flowID,
		flowSize: flowSize,
		cwnd:     cwnd,
		routeOut: routeOut,
		list:     list,
		log:      log,
	}
}

// NodeName implements [packet.Sink].
func (s *Source) NodeName() string { return s.name }

// Start schedules the flow's first burst of DATA packets at simulated time
// when.
func (s *Source) Start(when simtime.Time) {
	s.startEvent = &startTrigger{src: s}
	_ = s.list.At(s.startEvent, when)
}

func (s *Source) emitWindow() {
	remaining := s.flowSize
	packetsTotal := (remaining + uint64(DataPacketSize) - 1) / uint64(DataPacketSize)
	toSend := uint64(s.cwnd)
	if toSend > packetsTotal {
		toSend = packetsTotal
	}
	s.log.Debug().Str("flow", s.name).Uint64("packets", toSend).Log("ndp: emitting initial window")
	for i := uint64(0); i < toSend; i++ {
		size := DataPacketSize
		if i == packetsTotal-1 {
			last := remaining - i*uint64(DataPacketSize)
			if last < uint64(DataPacketSize) {
				size = uint32(last)
			}
		}
		p := &packet.Packet{
			Kind:      packet.Data,
			SizeBytes: size,
			FlowID:    s.flowID,
			SeqNo:     i,
			FirstRTT:  true,
			Route:     s.routeOut,
		}
		s.sent++
		s.routeOut.Forward(p)
	}
}

// ReceivePacket implements [packet.Sink]: a Source only ever receives
// control traffic referring to its own flow (ACK/NACK/HEADER echoes).
func (s *Source) ReceivePacket(p *packet.Packet) {
	switch p.Kind {
	case packet.Ack:
		s.acked++
	case packet.Nack:
		s.nacked++
	case packet.Header:
		s.headers++
	}
}

// Done reports whether every packet this source emitted has been
// acknowledged (ACK or NACK), i.e. the flow has nothing outstanding.
func (s *Source) Done() bool { return s.acked+s.nacked >= s.sent }

// Sent, Acked, Nacked, and Headers report the source's lifetime counters.
func (s *Source) Sent() uint64    { return s.sent }
func (s *Source) Acked() uint64   { return s.acked }
func (s *Source) Nacked() uint64  { return s.nacked }
func (s *Source) Headers() uint64 { return s.headers }

// Sink is a minimal NDP receiver: every DATA packet it receives is
// acknowledged along routeIn; every HEADER (a trimmed DATA packet, meaning
// the network dropped the payload under load) is negatively acknowledged
// instead, carrying the original flow/seq so the source's (absent, in this
// thin stand-in) retransmission logic could act on it.
type Sink struct {
	name    string
	routeIn *packet.Route

	received uint64
	headers  uint64
}

// NewSink constructs a Sink that replies along routeIn. routeIn may be nil
// at construction and filled in later with [Sink.SetRoute] — routes from a
// destination host back to a source reference the source object, which
// typically doesn't exist until after the sink does, so the two are wired
// up in two steps.
func NewSink(name string, routeIn *packet.Route) *Sink {
	return &Sink{name: name, routeIn: routeIn}
}

// SetRoute sets (or replaces) the route a Sink uses to send ACK/NACK
// traffic back towards the source.
func (s *Sink) SetRoute(routeIn *packet.Route) { s.routeIn = routeIn }

// NodeName implements [packet.Sink].
func (s *Sink) NodeName() string { return s.name }

// ReceivePacket implements [packet.Sink].
func (s *Sink) ReceivePacket(p *packet.Packet) {
	switch p.Kind {
	case packet.Data:
		s.received++
		s.reply(packet.Ack, p)
	case packet.Header:
		s.headers++
		s.reply(packet.Nack, p)
	}
}

func (s *Sink) reply(kind packet.Kind, data *packet.Packet) {
	size := uint32(64)
	reply := &packet.Packet{
		Kind:      kind,
		SizeBytes: size,
		FlowID:    data.FlowID,
		SeqNo:     data.SeqNo,
		Route:     s.routeIn,
	}
	s.routeIn.Forward(reply)
}

// Received and Headers report the sink's lifetime counters.
func (s *Sink) Received() uint64 { return s.received }
func (s *Sink) Headers() uint64  { return s.headers }
