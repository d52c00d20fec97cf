// Package fattree builds a k-ary fat-tree topology of [queue.AeolusQueue] +
// [pipe.Pipe] hops and produces [packet.Route] values between hosts, the
// same structure `FatTreeTopology` provides in the original simulator's
// sim/datacenter package. It is the glue that lets the queue and
// event-list core be exercised end to end by the CLI and by tests, not
// just by package-level unit tests.
//
// A link in this topology is one [queue.AeolusQueue] (the sending port's
// buffer) feeding one [pipe.Pipe] (its fixed propagation delay). A queue
// and pipe pair is cached per physical link and shared by every route that
// crosses it, but the next hop out of a link is destination-dependent (two
// routes diverging past the same link need different downstreams), so
// pipes never store a fixed downstream — they forward via the packet's own
// [packet.Route]. A built Route therefore alternates queue and pipe hops,
// one pair per link, ending in the destination [packet.Sink].
package fattree

import (
	"fmt"

	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/internal/obslog"
	"github.com/aeolus-sim/ndpsim/packet"
	"github.com/aeolus-sim/ndpsim/pipe"
	"github.com/aeolus-sim/ndpsim/queue"
	"github.com/aeolus-sim/ndpsim/simtime"
)

// Config controls the shape and link characteristics of a built topology.
type Config struct {
	// Pods is k: the number of pods, each with k/2 edge switches, k/2
	// aggregation switches, and k/2 hosts per edge switch. Must be even
	// and at least 2.
	Pods int
	// HostLinkBps is the bitrate of host<->edge links.
	HostLinkBps uint64
	// CoreLinkBps is the bitrate of edge<->aggregation and
	// aggregation<->core links.
	CoreLinkBps uint64
	// QueueBytes is the per-port buffer size applied to every queue in
	// the topology.
	QueueBytes uint64
	// LinkDelay is the one-way propagation delay applied to every link.
	LinkDelay simtime.Time
	// Log, if non-nil, is attached to every queue in the topology.
	Log *obslog.Logger
}

// DefaultConfig returns a Config matching the original topology's
// defaults: an 8-packet (at 1500B MTU) queue size, a 1us link delay (the
// RTT=1 constant in main_ndp_realistic.cpp), and a 4:1 core-to-host
// bandwidth ratio typical of a non-oversubscribed core layer.
func DefaultConfig(pods int) Config {
	return Config{
		Pods:        pods,
		HostLinkBps: 10_000_000_000,
		CoreLinkBps: 40_000_000_000,
		QueueBytes:  8 * 1500,
		LinkDelay:   simtime.FromMicros(1),
	}
}

type linkKey struct{ from, to string }

// Topology is a built k-ary fat tree, wired with one [queue.AeolusQueue] +
// [pipe.Pipe] per directional link, lazily constructed as routes are
// requested and cached so every route sharing a physical link shares its
// congestion state.
type Topology struct {
	cfg  Config
	list *eventlist.List

	hostsPerEdge int
	podGroups    int // k/2

	queues map[linkKey]*queue.AeolusQueue
	pipes  map[linkKey]*pipe.Pipe
}

// Build constructs an (initially linkless) Topology on list. It panics if
// cfg describes an invalid shape — a configuration error a caller must
// catch before calling Build, not a runtime condition this package can
// recover from.
func Build(cfg Config, list *eventlist.List) *Topology {
	if cfg.Pods <= 0 || cfg.Pods%2 != 0 {
		panic("fattree: Pods must be a positive even number")
	}
	if cfg.HostLinkBps == 0 || cfg.CoreLinkBps == 0 || cfg.QueueBytes == 0 {
		panic("fattree: link bitrates and queue size must be positive")
	}
	return &Topology{
		cfg:          cfg,
		list:         list,
		hostsPerEdge: cfg.Pods / 2,
		podGroups:    cfg.Pods / 2,
		queues:       make(map[linkKey]*queue.AeolusQueue),
		pipes:        make(map[linkKey]*pipe.Pipe),
	}
}

// HostCount returns k^3/4: the number of host ports the topology supports.
func (t *Topology) HostCount() int {
	return t.cfg.Pods * t.hostsPerEdge * t.podGroups
}

func hostName(id int) string       { return fmt.Sprintf("host%d", id) }
func edgeName(pod, e int) string   { return fmt.Sprintf("edge%d-%d", pod, e) }
func aggName(pod, a int) string    { return fmt.Sprintf("agg%d-%d", pod, a) }
func coreName(group, c int) string { return fmt.Sprintf("core%d-%d", group, c) }

func (t *Topology) hostPod(host int) int  { return host / (t.hostsPerEdge * t.podGroups) }
func (t *Topology) hostEdge(host int) int { return (host / t.hostsPerEdge) % t.podGroups }

// Paths returns every ECMP candidate [packet.Route] from host src to host
// dst, each route ending in dstSink. Hosts on the same edge switch get
// exactly one path; hosts in the same pod get one path per aggregation
// switch in that pod; hosts in different pods get one path per
// (aggregation switch, core switch) pair reachable from the source's
// aggregation layer — the "scatter" ECMP candidate set the original
// topology's SCATTER_PERMUTE/SCATTER_RANDOM strategies choose among.
func (t *Topology) Paths(src, dst int, dstSink packet.Sink) []*packet.Route {
	srcPod, srcEdge := t.hostPod(src), t.hostEdge(src)
	dstPod, dstEdge := t.hostPod(dst), t.hostEdge(dst)
	dstHost := hostName(dst)
	srcE, dstE := edgeName(srcPod, srcEdge), edgeName(dstPod, dstEdge)

	if srcPod == dstPod && srcEdge == dstEdge {
		return []*packet.Route{t.buildChain(
			[]string{srcE, dstHost},
			[]uint64{t.cfg.HostLinkBps},
			dstSink,
		)}
	}

	var routes []*packet.Route
	if srcPod == dstPod {
		for a := 0; a < t.podGroups; a++ {
			agg := aggName(srcPod, a)
			routes = append(routes, t.buildChain(
				[]string{srcE, agg, dstE, dstHost},
				[]uint64{t.cfg.CoreLinkBps, t.cfg.CoreLinkBps, t.cfg.HostLinkBps},
				dstSink,
			))
		}
		return routes
	}

	for a := 0; a < t.podGroups; a++ {
		srcAgg := aggName(srcPod, a)
		dstAgg := aggName(dstPod, a)
		for c := 0; c < t.podGroups; c++ {
			core := coreName(a, c)
			routes = append(routes, t.buildChain(
				[]string{srcE, srcAgg, core, dstAgg, dstE, dstHost},
				[]uint64{t.cfg.CoreLinkBps, t.cfg.CoreLinkBps, t.cfg.CoreLinkBps, t.cfg.CoreLinkBps, t.cfg.HostLinkBps},
				dstSink,
			))
		}
	}
	return routes
}

// buildChain materializes (or reuses) the queue+pipe pair for each
// consecutive pair of names and returns the Route formed by alternating
// them in link order, terminated by finalSink.
func (t *Topology) buildChain(names []string, bpsPerHop []uint64, finalSink packet.Sink) *packet.Route {
	n := len(names) - 1
	hops := make([]packet.Sink, 0, 2*n+1)
	for i := 0; i < n; i++ {
		key := linkKey{names[i], names[i+1]}
		q, ok := t.queues[key]
		if !ok {
			q = queue.New(bpsPerHop[i], t.cfg.QueueBytes, t.list,
				queue.WithName(names[i]+">"+names[i+1]), queue.WithLogger(t.cfg.Log))
			t.queues[key] = q
		}
		p, ok := t.pipes[key]
		if !ok {
			p = pipe.New(names[i]+">"+names[i+1]+".pipe", t.cfg.LinkDelay, t.list)
			t.pipes[key] = p
		}
		hops = append(hops, q, p)
	}
	hops = append(hops, finalSink)
	return packet.NewRoute(hops...)
}

// Queue returns the queue for the link from a named switch to a named
// switch or host, for tests and metrics that want to inspect a specific
// port's state. It returns nil if that link hasn't been built yet (no
// route using it has been requested).
func (t *Topology) Queue(from, to string) *queue.AeolusQueue {
	return t.queues[linkKey{from, to}]
}

// HostName and EdgeName expose the topology's naming scheme so callers
// (tests, the CLI) can address specific elements without duplicating the
// naming convention.
func HostName(id int) string     { return hostName(id) }
func EdgeName(pod, e int) string { return edgeName(pod, e) }

// Queues returns every link queue built so far, keyed by "from->to", for
// callers (the CLI's metrics sampling loop) that want to report on every
// port without knowing the topology's internal naming scheme.
func (t *Topology) Queues() map[string]*queue.AeolusQueue {
	out := make(map[string]*queue.AeolusQueue, len(t.queues))
	for k, q := range t.queues {
		out[fmt.Sprintf("%s->%s", k.from, k.to)] = q
	}
	return out
}
