// Package packet defines the unit of transport ([Packet]), its ordered
// path through the network ([Route]), and the capability shared by every
// element a packet can be handed to ([Sink]).
package packet

// Kind tags what a [Packet] carries.
type Kind uint8

const (
	// Data is a full-payload data segment. DATA packets are classified
	// into the low-priority queue lane.
	Data Kind = iota
	// Header is a trimmed DATA packet: congestion-signalling only, no
	// payload. Produced synchronously by a queue on overflow.
	Header
	// Ack is a transport acknowledgement. High-priority lane.
	Ack
	// Nack is a transport negative-acknowledgement. High-priority lane.
	Nack
	// Pull is an NDP receiver-driven pull request. High-priority lane.
	Pull
)

// String renders k for logs.
func (k Kind) String() string {
	switch k {
	case Data:
		return "DATA"
	case Header:
		return "HEADER"
	case Ack:
		return "ACK"
	case Nack:
		return "NACK"
	case Pull:
		return "PULL"
	default:
		return "UNKNOWN"
	}
}

// HighPriority reports whether k belongs in a queue's high-priority lane.
// Only DATA is low priority; HEADER, ACK, NACK, and PULL are all control
// traffic and share the high lane.
func (k Kind) HighPriority() bool { return k != Data }

// HeaderSize is the fixed wire size, in bytes, of a trimmed HEADER packet.
const HeaderSize uint32 = 64

// Packet is the opaque unit of transport carried hop by hop along a
// [Route]. Ownership is exclusive: exactly one [Sink] holds a given
// *Packet at any time, transferred at each ReceivePacket call.
type Packet struct {
	SizeBytes uint32
	Kind      Kind
	Trimmed   bool
	Bounced   bool
	FirstRTT  bool

	FlowID uint64
	SeqNo  uint64
	PathID uint32

	Route *Route
	Hop   uint32
}

// Trim converts p in place into a HEADER-sized copy of a DATA packet,
// retaining FlowID, SeqNo, and PathID for the transport to recognize it as
// a loss signal rather than a blind drop. Trim is only meaningful for DATA
// packets; callers (the queue) are responsible for checking Kind first.
func (p *Packet) Trim() {
	p.Kind = Header
	p.Trimmed = true
	p.SizeBytes = HeaderSize
}
