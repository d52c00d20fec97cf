package fattree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/simtime"
	"github.com/aeolus-sim/ndpsim/topology/fattree"
	"github.com/aeolus-sim/ndpsim/transport/ndp"
)

func TestPathsSameEdgeSwitch(t *testing.T) {
	l := eventlist.New()
	top := fattree.Build(fattree.DefaultConfig(4), l)

	sink := ndp.NewSink("dst", nil)
	routes := top.Paths(0, 1, sink)
	require.Len(t, routes, 1, "hosts on the same edge switch have exactly one path")
}

func TestPathsSamePodECMP(t *testing.T) {
	l := eventlist.New()
	top := fattree.Build(fattree.DefaultConfig(4), l)

	sink := ndp.NewSink("dst", nil)
	// k=4 => 2 hosts per edge switch, 2 edges per pod; host 0 is on edge0
	// of pod0, host 2 is on edge1 of the same pod.
	routes := top.Paths(0, 2, sink)
	assert.Len(t, routes, 2, "same-pod ECMP has one path per aggregation switch (k/2)")
}

func TestPathsCrossPodECMP(t *testing.T) {
	l := eventlist.New()
	top := fattree.Build(fattree.DefaultConfig(4), l)

	sink := ndp.NewSink("dst", nil)
	// host 8 is in pod 2 (hostsPerEdge=2, podGroups=2 => pod size 4).
	routes := top.Paths(0, 8, sink)
	assert.Len(t, routes, 4, "cross-pod ECMP has one path per (agg, core) pair: (k/2)^2")
}

func TestEndToEndFlowDelivers(t *testing.T) {
	l := eventlist.New(eventlist.WithEndTime(simtime.FromMillis(10)))
	top := fattree.Build(fattree.DefaultConfig(4), l)

	const srcHost, dstHost = 0, 2 // same pod, different edge switch

	sink := ndp.NewSink("sink", nil)
	fwd := top.Paths(srcHost, dstHost, sink)
	require.NotEmpty(t, fwd)

	source := ndp.New("src", 1, 3000, 4, fwd[0], l, nil)

	rev := top.Paths(dstHost, srcHost, source)
	require.NotEmpty(t, rev)
	sink.SetRoute(rev[0])

	source.Start(0)
	l.Run()

	assert.Equal(t, uint64(2), source.Sent(), "3000 bytes at 1500B MTU is 2 packets")
	assert.Equal(t, source.Sent(), source.Acked()+source.Nacked())
	assert.True(t, source.Done())
	assert.Equal(t, uint64(2), sink.Received())
}

// A host's last-hop link (edge switch -> host) is shared by two distinct
// roles: the final hop of any flow whose destination is that host, and
// the final hop of the ACK path returning to that host when it is a
// flow's source. Both routes cross the same physical link but terminate
// at different sinks (the host's Sink vs. its Source), so the shared
// pipe on that link must not pin a single next hop.
func TestSharedLastHopLinkRoutesToCorrectSinkForEachFlow(t *testing.T) {
	l := eventlist.New(eventlist.WithEndTime(simtime.FromMillis(10)))
	top := fattree.Build(fattree.DefaultConfig(4), l)

	const h = 0   // the shared host, both a dst and another flow's src
	const x = 1   // sends data to h, same edge switch
	const y = 8   // h sends data to y, a different pod

	dstAtH := ndp.NewSink("dst-at-h", nil)
	fwd1 := top.Paths(x, h, dstAtH)
	require.NotEmpty(t, fwd1)
	srcX := ndp.New("src-x", 1, 3000, 4, fwd1[0], l, nil)
	rev1 := top.Paths(h, x, srcX)
	require.NotEmpty(t, rev1)
	dstAtH.SetRoute(rev1[0])

	dstAtY := ndp.NewSink("dst-at-y", nil)
	fwd2 := top.Paths(h, y, dstAtY)
	require.NotEmpty(t, fwd2)
	srcH := ndp.New("src-h", 2, 3000, 4, fwd2[0], l, nil)
	rev2 := top.Paths(y, h, srcH)
	require.NotEmpty(t, rev2)
	dstAtY.SetRoute(rev2[0])

	srcX.Start(0)
	srcH.Start(0)
	l.Run()

	assert.True(t, srcX.Done(), "flow into the shared host must complete")
	assert.True(t, srcH.Done(), "flow out of the shared host must complete")
	assert.Equal(t, srcX.Sent(), srcX.Acked()+srcX.Nacked())
	assert.Equal(t, srcH.Sent(), srcH.Acked()+srcH.Nacked())
}

func TestEndToEndAcrossPods(t *testing.T) {
	l := eventlist.New(eventlist.WithEndTime(simtime.FromMillis(10)))
	top := fattree.Build(fattree.DefaultConfig(4), l)

	const srcHost, dstHost = 0, 12 // pod 0 -> pod 3

	sink := ndp.NewSink("sink2", nil)
	fwd := top.Paths(srcHost, dstHost, sink)
	require.NotEmpty(t, fwd)

	source := ndp.New("src2", 2, 6000, 8, fwd[0], l, nil)

	rev := top.Paths(dstHost, srcHost, source)
	require.NotEmpty(t, rev)
	sink.SetRoute(rev[0])

	source.Start(0)
	l.Run()

	assert.True(t, source.Done())
	assert.Equal(t, source.Sent(), sink.Received())
}
