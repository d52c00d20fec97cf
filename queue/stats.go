package queue

// Stats holds the monotonic counters an AeolusQueue tracks over its
// lifetime. All fields only ever increase.
type Stats struct {
	// Packets is the total number of packets that completed service
	// (were handed to the next hop), of any kind.
	Packets uint64
	// Data, Acks, Nacks, Pulls count completed services by kind. Headers
	// counts HEADER packets admitted to the high lane, both those trimmed
	// by this queue and those that arrive already trimmed upstream — since
	// every admitted header is eventually serviced with no further drop,
	// this single counter also equals the number of HEADER packets that
	// completed service (testable property 4).
	Data, Acks, Nacks, Pulls, Headers uint64
	// Stripped counts every trim attempt (DATA converted to a HEADER-sized
	// copy on low-lane overflow), whether or not the resulting header was
	// itself admitted to the high lane.
	Stripped uint64
	// Bounced counts packets received with their Bounced flag already
	// set. The queue does not decide when to bounce; it only accounts for
	// an upstream policy's decision.
	Bounced uint64

	// HighLaneDrops counts control packets (HEADER/ACK/NACK/PULL) dropped
	// because the high lane itself was full. In practice this is a
	// design-level error (the high lane is sized to never realistically
	// fill), not a normal traffic-shedding outcome, but must still be
	// counted rather than silently lost.
	HighLaneDrops uint64
	// FirstRTTDrops counts DATA packets dropped outright under the
	// first-RTT drop-threshold rule, as opposed to trimmed.
	FirstRTTDrops uint64
}
