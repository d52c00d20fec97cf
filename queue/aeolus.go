package queue

import (
	"fmt"

	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/internal/obslog"
	"github.com/aeolus-sim/ndpsim/packet"
	"github.com/aeolus-sim/ndpsim/simtime"
)

// servState is the queue's service state machine: IDLE, SERVING_LOW, or
// SERVING_HIGH.
type servState uint8

const (
	stateIdle servState = iota
	stateServingLow
	stateServingHigh
)

func (s servState) String() string {
	switch s {
	case stateServingLow:
		return "SERVING_LOW"
	case stateServingHigh:
		return "SERVING_HIGH"
	default:
		return "IDLE"
	}
}

// AeolusQueue is a bounded, dual-priority packet-switch output buffer that
// trims DATA to HEADER-sized copies on overflow (preserving the loss
// signal for fast retransmit) rather than blind-dropping it, services its
// two lanes with a weighted round-robin discipline, and drops first-RTT
// packets outright above a configurable byte threshold to avoid a header
// flood during a flow's initial burst.
type AeolusQueue struct {
	name string

	bitrateBps uint64
	maxBytes   uint64

	low, high fifo
	bytesLow  uint64
	bytesHigh uint64

	serv servState

	ratioHigh, ratioLow   uint32
	creditHigh, creditLow uint32

	dropThresh uint32

	Stats Stats

	list *eventlist.List
	log  *obslog.Logger
}

// New constructs an AeolusQueue with the given link bitrate (bits/sec) and
// buffer capacity (bytes), driven by list. It panics if bitrateBps is zero
// or maxBytes is zero: these are simulator-invariant violations at
// construction, not recoverable configuration data — callers validate
// user-supplied values (e.g. CLI flags) before reaching here.
func New(bitrateBps, maxBytes uint64, list *eventlist.List, opts ...Option) *AeolusQueue {
	if bitrateBps == 0 {
		panic("queue: bitrateBps must be positive")
	}
	if maxBytes == 0 {
		panic("queue: maxBytes must be positive")
	}
	q := &AeolusQueue{
		bitrateBps: bitrateBps,
		maxBytes:   maxBytes,
		list:       list,
		ratioHigh:  1,
		ratioLow:   1,
		creditHigh: 1,
		creditLow:  1,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// NodeName implements [packet.Sink].
func (q *AeolusQueue) NodeName() string { return q.name }

// SetRatio updates the weighted round-robin weights, and resets the
// current credit counters to match.
func (q *AeolusQueue) SetRatio(high, low uint32) {
	if high == 0 || low == 0 {
		panic("queue: ratio weights must be positive")
	}
	q.ratioHigh, q.ratioLow = high, low
	q.creditHigh, q.creditLow = high, low
}

// QueueSize returns the combined occupancy of both lanes, in bytes.
func (q *AeolusQueue) QueueSize() uint64 { return q.bytesLow + q.bytesHigh }

// ReceivePacket implements [packet.Sink]. It runs the classification,
// admission, trim, first-RTT-drop, and bounce-accounting decision tree
// synchronously: no suspension, all outcomes resolved before return.
func (q *AeolusQueue) ReceivePacket(p *packet.Packet) {
	if p.Bounced {
		q.Stats.Bounced++
	}

	if p.Kind.HighPriority() {
		q.admitHigh(p)
	} else {
		q.admitLow(p)
	}

	if q.serv == stateIdle {
		q.beginService()
	}
}

// admitHigh implements rule 2: HEADER/ACK/NACK/PULL admission to the high
// lane, or drop on overflow.
func (q *AeolusQueue) admitHigh(p *packet.Packet) {
	if q.bytesHigh+uint64(p.SizeBytes) > q.maxBytes {
		q.Stats.HighLaneDrops++
		q.log.Warn().Str("queue", q.name).Str("kind", p.Kind.String()).
			Uint64("flow", p.FlowID).Log("high lane overflow: dropping control packet")
		return
	}
	q.high.PushBack(p)
	q.bytesHigh += uint64(p.SizeBytes)
	if p.Kind == packet.Header {
		q.Stats.Headers++
	}
}

// admitLow implements rule 3: DATA admission to the low lane, first-RTT
// drop, or trim-to-header.
func (q *AeolusQueue) admitLow(p *packet.Packet) {
	// 3a: fits as-is.
	if q.bytesLow+q.bytesHigh+uint64(p.SizeBytes) <= q.maxBytes {
		q.low.PushBack(p)
		q.bytesLow += uint64(p.SizeBytes)
		return
	}

	// 3b: first-RTT drop above the configured threshold — a full drop,
	// not a trim, to avoid a header flood during a flow's initial burst.
	// dropThresh==0 means the rule is off, not "drop immediately".
	if p.FirstRTT && q.dropThresh > 0 && q.bytesLow+q.bytesHigh >= uint64(q.dropThresh) {
		q.Stats.FirstRTTDrops++
		q.log.Trace().Str("queue", q.name).Uint64("flow", p.FlowID).
			Uint64("seq", p.SeqNo).Log("first-RTT drop above threshold")
		return
	}

	// 3c: trim to a HEADER and attempt admission to the high lane.
	p.Trim()
	q.Stats.Stripped++
	q.admitHigh(p)
}

// beginService selects the next packet to serve per the weighted
// round-robin discipline and schedules its completion.
func (q *AeolusQueue) beginService() {
	lane, consumed := q.selectLane()
	if lane == stateIdle {
		q.serv = stateIdle
		return
	}

	var pkt *packet.Packet
	switch lane {
	case stateServingHigh:
		pkt = q.high.Front()
		if consumed {
			q.creditHigh--
		}
	case stateServingLow:
		pkt = q.low.Front()
		if consumed {
			q.creditLow--
		}
	}
	q.serv = lane

	txPs := (8 * uint64(pkt.SizeBytes) * 1_000_000_000_000) / q.bitrateBps
	_ = q.list.In(q, simtime.Time(txPs))
}

// selectLane picks the lane to serve next and reports whether doing so
// should consume WRR credit. If only one lane is backlogged it is served
// without touching credit. If both are backlogged, credit counters
// initialized to (ratioHigh, ratioLow) are drawn down one packet at a
// time; once both reach zero they reset together — simpler and more
// directly testable for starvation-freedom than a signed running counter.
func (q *AeolusQueue) selectLane() (lane servState, consumedCredit bool) {
	hLen, lLen := q.high.Len(), q.low.Len()
	switch {
	case hLen == 0 && lLen == 0:
		return stateIdle, false
	case hLen == 0:
		return stateServingLow, false
	case lLen == 0:
		return stateServingHigh, false
	}

	if q.creditHigh == 0 && q.creditLow == 0 {
		q.creditHigh, q.creditLow = q.ratioHigh, q.ratioLow
	}
	if q.creditHigh > 0 {
		return stateServingHigh, true
	}
	return stateServingLow, true
}

// DoNextEvent implements [eventlist.Source]: it completes the in-service
// packet, hands it to the next hop on its route, and begins serving the
// next packet if any lane is backlogged.
func (q *AeolusQueue) DoNextEvent() {
	var pkt *packet.Packet
	switch q.serv {
	case stateServingHigh:
		pkt = q.high.PopFront()
		q.bytesHigh -= uint64(pkt.SizeBytes)
		switch pkt.Kind {
		case packet.Ack:
			q.Stats.Acks++
		case packet.Nack:
			q.Stats.Nacks++
		case packet.Pull:
			q.Stats.Pulls++
		case packet.Header:
			// counted at admission time (see Stats.Headers doc).
		}
	case stateServingLow:
		pkt = q.low.PopFront()
		q.bytesLow -= uint64(pkt.SizeBytes)
		q.Stats.Data++
	default:
		panic(fmt.Sprintf("queue %q: DoNextEvent fired while IDLE", q.name))
	}
	q.Stats.Packets++
	q.serv = stateIdle

	pkt.Route.Forward(pkt)

	q.beginService()
}
