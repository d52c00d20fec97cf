// Command ndpsim runs a discrete-event NDP/datacenter-transport
// simulation over a fat-tree topology, reproducing the CLI surface of the
// original simulator's main_ndp_realistic.cpp (`-o`, `-sub`, `-conns`,
// `-nodes`, `-cwnd`, `-q`, `-trace`, `-strat`) plus the operational flags a
// complete front end needs (`-seed`, `-log-level`, `-metrics-addr`,
// `-config`, `-sweep`).
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/aeolus-sim/ndpsim/clock"
	"github.com/aeolus-sim/ndpsim/connmatrix"
	"github.com/aeolus-sim/ndpsim/eventlist"
	"github.com/aeolus-sim/ndpsim/internal/obslog"
	"github.com/aeolus-sim/ndpsim/internal/simconfig"
	"github.com/aeolus-sim/ndpsim/metrics"
	"github.com/aeolus-sim/ndpsim/simlog"
	"github.com/aeolus-sim/ndpsim/simtime"
	"github.com/aeolus-sim/ndpsim/topology/fattree"
	"github.com/aeolus-sim/ndpsim/tracefile"
	"github.com/aeolus-sim/ndpsim/transport/ndp"
)

func main() {
	cfg := simconfig.Defaults()
	fs := flag.NewFlagSet("ndpsim", flag.ExitOnError)
	configPath := simconfig.RegisterFlags(fs, &cfg)
	sweep := fs.Int("sweep", 1, "number of independent simulation replicas to run concurrently")
	sweepLimit := fs.Int("sweep-limit", 4, "max replicas running at once")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if *configPath != "" {
		if err := simconfig.LoadYAML(&cfg, *configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := obslog.New(os.Stderr, cfg.LogLevelValue())

	reg := prometheus.NewRegistry()
	metricsReg := metrics.NewRegistry(reg)
	if cfg.MetricsAddr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				log.Error().Str("addr", cfg.MetricsAddr).Log(err.Error())
			}
		}()
	}

	n := *sweep
	if n < 1 {
		n = 1
	}
	results := make([]replicaResult, n)
	g := new(errgroup.Group)
	g.SetLimit(*sweepLimit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			runCfg := cfg
			runCfg.Seed = cfg.Seed + int64(i)
			if n > 1 {
				runCfg.OutputFile = fmt.Sprintf("%s.%d", cfg.OutputFile, i)
			}
			res, err := runReplica(i, runCfg, log, metricsReg)
			if err != nil {
				return fmt.Errorf("replica %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for i, r := range results {
		fmt.Printf("replica %d: run=%s flows=%d sent=%d acked=%d nacked=%d\n",
			i, r.runID, r.flows, r.sent, r.acked, r.nacked)
	}
}

type replicaResult struct {
	runID               string
	flows               int
	sent, acked, nacked uint64
}

// runReplica executes one independent simulation: builds a fat tree sized
// to fit cfg.Nodes, generates connections per cfg.Strategy, reads the
// trace file for per-flow size/start time, wires an NDP source/sink pair
// per connection onto a randomly chosen ECMP path, runs the event list to
// completion, and writes the simulation log.
func runReplica(replicaIdx int, cfg simconfig.Config, log *obslog.Logger, metricsReg *metrics.Registry) (replicaResult, error) {
	runID := uuid.NewString()

	strategy, _ := connmatrix.ParseStrategy(cfg.Strategy)
	rng := rand.New(rand.NewSource(cfg.Seed))

	pods := podsForHostCount(cfg.Nodes)
	topCfg := fattree.DefaultConfig(pods)
	topCfg.QueueBytes = uint64(cfg.QueuePkts) * uint64(ndp.DataPacketSize)
	topCfg.Log = log
	list := eventlist.New(eventlist.WithEndTime(simtime.FromSeconds(2.001)))
	top := fattree.Build(topCfg, list)

	heartbeat := clock.New(simtime.FromMicros(100), list, func(simtime.Time) {
		for name, q := range top.Queues() {
			metricsReg.Sample(fmt.Sprintf("r%d:%s", replicaIdx, name), q)
		}
	})
	heartbeat.Start()

	flows, err := tracefile.ReadFile(cfg.TraceFile)
	if err != nil {
		return replicaResult{}, err
	}

	conns := connmatrix.Generate(strategy, top.HostCount(), cfg.Conns, rng)

	outFile, err := os.Create(cfg.OutputFile)
	if err != nil {
		return replicaResult{}, fmt.Errorf("ndpsim: %w", err)
	}
	defer outFile.Close()
	logw := simlog.New(outFile)
	if err := logw.WritePreamble(simlog.Preamble{
		PacketSizeBytes: ndp.DataPacketSize,
		Subflows:        cfg.Subflows,
		HostNICRate:     topCfg.HostLinkBps / (8 * uint64(ndp.DataPacketSize)),
		CoreLinkRate:    topCfg.CoreLinkBps / (8 * uint64(ndp.DataPacketSize)),
		RTT:             topCfg.LinkDelay,
		RunID:           runID,
	}); err != nil {
		return replicaResult{}, err
	}

	var sources []*ndp.Source
	for i, c := range conns {
		if i >= len(flows) {
			break
		}
		flow := flows[i]
		flowID := uint64(i) + 1

		sinkName := fmt.Sprintf("ndpsink_%d_%d", c.Src, c.Dst)
		sink := ndp.NewSink(sinkName, nil)

		fwdCandidates := top.Paths(c.Src, c.Dst, sink)
		fwd := fwdCandidates[rng.Intn(len(fwdCandidates))]

		srcName := fmt.Sprintf("ndp_%d_%d", c.Src, c.Dst)
		src := ndp.New(srcName, flowID, flow.SizeBytes, uint32(cfg.Cwnd), fwd, list, log)

		revCandidates := top.Paths(c.Dst, c.Src, src)
		rev := revCandidates[rng.Intn(len(revCandidates))]
		sink.SetRoute(rev)

		src.Start(flow.StartTime)
		sources = append(sources, src)
	}

	list.Run()
	heartbeat.Stop()

	// Final snapshot: the heartbeat samples every 100us, but a replica's
	// last tick may land before the last packet completes service.
	for name, q := range top.Queues() {
		metricsReg.Sample(fmt.Sprintf("r%d:%s", replicaIdx, name), q)
	}

	var sent, acked, nacked uint64
	for _, s := range sources {
		sent += s.Sent()
		acked += s.Acked()
		nacked += s.Nacked()
	}

	if err := logw.Flush(); err != nil {
		return replicaResult{}, err
	}

	return replicaResult{runID: runID, flows: len(sources), sent: sent, acked: acked, nacked: nacked}, nil
}

// podsForHostCount picks the smallest even k such that a k-ary fat tree's
// k^3/4 host capacity is at least wanted.
func podsForHostCount(wanted int) int {
	for k := 2; ; k += 2 {
		if k*k*k/4 >= wanted {
			return k
		}
	}
}
