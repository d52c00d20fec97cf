package queue

import (
	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/packet"
	"github.com/aeolus-sim/ndpsim/simtime"
)

// CompositeQueue is a single-lane queue that trims DATA to a HEADER on
// overflow, same as [AeolusQueue]'s admission rule, but without the
// high/low weighted round-robin split: every packet, trimmed or not,
// shares one FIFO and one service order. Useful as a control baseline for
// isolating how much of AeolusQueue's benefit comes from trimming alone
// versus trimming plus lane priority.
type CompositeQueue struct {
	name string

	bitrateBps uint64
	maxBytes   uint64

	lane    fifo
	bytes   uint64
	serving bool

	Stats SingleLaneStats

	list *eventlist.List
}

// CompositeOption configures a [CompositeQueue] at construction time.
type CompositeOption func(*CompositeQueue)

// WithCompositeName sets the queue's identity for logs.
func WithCompositeName(name string) CompositeOption {
	return func(q *CompositeQueue) { q.name = name }
}

// NewCompositeQueue constructs a CompositeQueue.
func NewCompositeQueue(bitrateBps, maxBytes uint64, list *eventlist.List, opts ...CompositeOption) *CompositeQueue {
	if bitrateBps == 0 {
		panic("queue: bitrateBps must be positive")
	}
	if maxBytes == 0 {
		panic("queue: maxBytes must be positive")
	}
	q := &CompositeQueue{
		bitrateBps: bitrateBps,
		maxBytes:   maxBytes,
		list:       list,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// NodeName implements [packet.Sink].
func (q *CompositeQueue) NodeName() string { return q.name }

// QueueSize returns current occupancy in bytes.
func (q *CompositeQueue) QueueSize() uint64 { return q.bytes }

// ReceivePacket implements [packet.Sink]. Control packets (HEADER, ACK,
// NACK, PULL) that don't fit are dropped outright; DATA packets that don't
// fit are trimmed to a HEADER and retried once, matching AeolusQueue's
// trim rule but against the single shared budget.
func (q *CompositeQueue) ReceivePacket(p *packet.Packet) {
	if p.Bounced {
		q.Stats.Bounced++
	}

	if q.bytes+uint64(p.SizeBytes) > q.maxBytes {
		if p.Kind != packet.Data {
			q.Stats.TailDrops++
			return
		}
		p.Trim()
		q.Stats.Stripped++
		if q.bytes+uint64(p.SizeBytes) > q.maxBytes {
			q.Stats.TailDrops++
			return
		}
	}

	if p.Kind == packet.Header {
		q.Stats.Headers++
	}
	q.lane.PushBack(p)
	q.bytes += uint64(p.SizeBytes)

	if !q.serving {
		q.beginService()
	}
}

func (q *CompositeQueue) beginService() {
	if q.lane.Len() == 0 {
		q.serving = false
		return
	}
	q.serving = true
	pkt := q.lane.Front()
	txPs := (8 * uint64(pkt.SizeBytes) * 1_000_000_000_000) / q.bitrateBps
	_ = q.list.In(q, simtime.Time(txPs))
}

// DoNextEvent implements [eventlist.Source].
func (q *CompositeQueue) DoNextEvent() {
	pkt := q.lane.PopFront()
	q.bytes -= uint64(pkt.SizeBytes)
	q.Stats.Packets++
	switch pkt.Kind {
	case packet.Data:
		q.Stats.Data++
	case packet.Ack:
		q.Stats.Acks++
	case packet.Nack:
		q.Stats.Nacks++
	case packet.Pull:
		q.Stats.Pulls++
	}
	q.serving = false

	pkt.Route.Forward(pkt)

	q.beginService()
}
