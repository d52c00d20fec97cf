package ndp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/packet"
	"github.com/aeolus-sim/ndpsim/simtime"
	"github.com/aeolus-sim/ndpsim/transport/ndp"
)

// wireDirect connects a Source straight to a Sink with no intervening
// queue or pipe, for tests that only care about the source/sink protocol
// rather than queuing behaviour.
func wireDirect(t *testing.T, list *eventlist.List, flowID, flowSize uint64, cwnd uint32) (*ndp.Source, *ndp.Sink) {
	t.Helper()
	sink := ndp.NewSink("sink", nil)
	fwd := packet.NewRoute(sink)
	src := ndp.New("src", flowID, flowSize, cwnd, fwd, list, nil)
	rev := packet.NewRoute(src)
	sink.SetRoute(rev)
	return src, sink
}

func TestSourceSendsWholeWindowUpFront(t *testing.T) {
	list := eventlist.New()
	src, sink := wireDirect(t, list, 1, 3*uint64(ndp.DataPacketSize), 10)

	src.Start(simtime.FromSeconds(0))
	list.Run()

	assert.Equal(t, uint64(3), src.Sent(), "flow is 3 full packets, window is larger, so only 3 are sent")
	assert.Equal(t, uint64(3), src.Acked())
	assert.Equal(t, uint64(0), src.Nacked())
	assert.True(t, src.Done())
	assert.Equal(t, uint64(3), sink.Received())
}

func TestSourceCapsWindowAtCwnd(t *testing.T) {
	list := eventlist.New()
	src, _ := wireDirect(t, list, 1, 10*uint64(ndp.DataPacketSize), 4)

	src.Start(simtime.FromSeconds(0))
	list.Run()

	assert.Equal(t, uint64(4), src.Sent(), "cwnd caps the initial burst below the flow's full packet count")
}

func TestLastPacketIsSizedToRemainder(t *testing.T) {
	list := eventlist.New()
	flowSize := 2*uint64(ndp.DataPacketSize) + 500
	sink := &sizeRecordingSink{}
	fwd := packet.NewRoute(sink)
	src := ndp.New("src", 1, flowSize, 10, fwd, list, nil)

	src.Start(simtime.FromSeconds(0))
	list.Run()

	require.Len(t, sink.sizes, 3)
	assert.Equal(t, uint32(500), sink.sizes[2], "the final packet of a non-MTU-aligned flow is sized to the remainder")
}

type sizeRecordingSink struct {
	sizes []uint32
}

func (s *sizeRecordingSink) NodeName() string { return "recorder" }
func (s *sizeRecordingSink) ReceivePacket(p *packet.Packet) {
	s.sizes = append(s.sizes, p.SizeBytes)
}

func TestSinkNacksTrimmedHeaders(t *testing.T) {
	list := eventlist.New()
	sink := ndp.NewSink("sink", nil)
	src := ndp.New("src", 1, uint64(ndp.DataPacketSize), 1, packet.NewRoute(sink), list, nil)
	rev := packet.NewRoute(src)
	sink.SetRoute(rev)

	src.Start(simtime.FromSeconds(0))
	// Manually deliver a pre-trimmed HEADER to the sink, simulating what a
	// queue does on overflow, to check the NACK path independent of queue
	// behaviour.
	hdr := &packet.Packet{Kind: packet.Header, SizeBytes: packet.HeaderSize, FlowID: 1, SeqNo: 0}
	sink.ReceivePacket(hdr)
	list.Run()

	assert.Equal(t, uint64(1), sink.Headers())
	assert.Equal(t, uint64(1), src.Nacked())
}
