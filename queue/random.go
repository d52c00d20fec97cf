package queue

import (
	"math/rand"

	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/packet"
	"github.com/aeolus-sim/ndpsim/simtime"
)

// SingleLaneStats holds the monotonic counters shared by the single-lane
// queue variants ([RandomQueue], [CompositeQueue]). All fields only ever
// increase over the life of a queue.
type SingleLaneStats struct {
	Packets                           uint64
	Data, Acks, Nacks, Pulls, Headers uint64
	Bounced                           uint64
	// TailDrops counts packets rejected because the queue was at or above
	// maxBytes at arrival.
	TailDrops uint64
	// EarlyDrops counts packets rejected by a probabilistic policy below
	// maxBytes (RandomQueue's RED curve). CompositeQueue never sets this.
	EarlyDrops uint64
	// Stripped counts DATA packets trimmed to a HEADER in place of being
	// dropped. RandomQueue never sets this.
	Stripped uint64
}

// RandomQueue is a single-lane FIFO with RED-style random early drop: once
// occupancy exceeds minThresh, packets are dropped with probability that
// rises linearly to 1.0 at maxBytes. It carries no priority split and never
// trims — the "what if we just blind-drop" baseline against
// [AeolusQueue]'s header-trim behaviour, for mixed-queue-type topologies.
type RandomQueue struct {
	name string

	bitrateBps uint64
	maxBytes   uint64
	minThresh  uint64

	lane    fifo
	bytes   uint64
	serving bool

	rng *rand.Rand

	Stats SingleLaneStats

	list *eventlist.List
}

// RandomOption configures a [RandomQueue] at construction time.
type RandomOption func(*RandomQueue)

// WithRandomName sets the queue's identity for logs.
func WithRandomName(name string) RandomOption {
	return func(q *RandomQueue) { q.name = name }
}

// WithRandomSource overrides the RNG driving the drop decision, for
// deterministic tests. Default is a rand.Rand seeded from a fixed value so
// repeated runs with the same packet sequence produce the same drops.
func WithRandomSource(rng *rand.Rand) RandomOption {
	return func(q *RandomQueue) { q.rng = rng }
}

// NewRandomQueue constructs a RandomQueue. minThresh must be <= maxBytes;
// it panics otherwise, alongside the zero-bitrate/zero-maxBytes checks
// [New] performs.
func NewRandomQueue(bitrateBps, maxBytes, minThresh uint64, list *eventlist.List, opts ...RandomOption) *RandomQueue {
	if bitrateBps == 0 {
		panic("queue: bitrateBps must be positive")
	}
	if maxBytes == 0 {
		panic("queue: maxBytes must be positive")
	}
	if minThresh > maxBytes {
		panic("queue: minThresh must not exceed maxBytes")
	}
	q := &RandomQueue{
		bitrateBps: bitrateBps,
		maxBytes:   maxBytes,
		minThresh:  minThresh,
		list:       list,
		rng:        rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// NodeName implements [packet.Sink].
func (q *RandomQueue) NodeName() string { return q.name }

// QueueSize returns current occupancy in bytes.
func (q *RandomQueue) QueueSize() uint64 { return q.bytes }

// ReceivePacket implements [packet.Sink].
func (q *RandomQueue) ReceivePacket(p *packet.Packet) {
	if p.Bounced {
		q.Stats.Bounced++
	}

	if q.bytes+uint64(p.SizeBytes) > q.maxBytes {
		q.Stats.TailDrops++
		return
	}

	if q.bytes > q.minThresh {
		span := q.maxBytes - q.minThresh
		dropProb := float64(q.bytes-q.minThresh) / float64(span)
		if q.rng.Float64() < dropProb {
			q.Stats.EarlyDrops++
			return
		}
	}

	q.lane.PushBack(p)
	q.bytes += uint64(p.SizeBytes)

	if !q.serving {
		q.beginService()
	}
}

func (q *RandomQueue) beginService() {
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
func (q *RandomQueue) DoNextEvent() {
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
