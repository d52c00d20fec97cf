// Package metrics exposes [queue.AeolusQueue] counters as Prometheus
// metrics, optionally served over HTTP from the CLI's `-metrics-addr`
// flag.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aeolus-sim/ndpsim/queue"
)

// QueueSample is a point-in-time snapshot of one named queue's counters
// and occupancy, the unit [Registry.Sample] records.
type QueueSample struct {
	Name      string
	Stats     queue.Stats
	QueueSize uint64
}

// Registry collects samples from the simulation's queues and serves them
// as Prometheus metrics. Samples are taken synchronously from the
// single-threaded simulation loop, typically once per [clock.Clock] tick
// plus a final snapshot after the run completes, and guarded by a mutex
// so a concurrently running HTTP handler can read a consistent snapshot
// without racing the simulation goroutine.
type Registry struct {
	mu      sync.Mutex
	samples map[string]QueueSample

	packets     *prometheus.GaugeVec
	headers     *prometheus.GaugeVec
	acks        *prometheus.GaugeVec
	nacks       *prometheus.GaugeVec
	pulls       *prometheus.GaugeVec
	stripped    *prometheus.GaugeVec
	bounced     *prometheus.GaugeVec
	highDrops   *prometheus.GaugeVec
	firstRTT    *prometheus.GaugeVec
	queueBytes  *prometheus.GaugeVec
}

// NewRegistry builds a Registry and registers its collectors with reg.
func NewRegistry(reg *prometheus.Registry) *Registry {
	vec := func(name, help string) *prometheus.GaugeVec {
		v := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ndpsim",
			Subsystem: "queue",
			Name:      name,
			Help:      help,
		}, []string{"queue"})
		reg.MustRegister(v)
		return v
	}
	return &Registry{
		samples:    make(map[string]QueueSample),
		packets:    vec("packets_total", "Packets that completed service."),
		headers:    vec("headers_total", "HEADER packets admitted to the high lane, trimmed here or upstream."),
		acks:       vec("acks_total", "ACK packets that completed service."),
		nacks:      vec("nacks_total", "NACK packets that completed service."),
		pulls:      vec("pulls_total", "PULL packets that completed service."),
		stripped:   vec("stripped_total", "Trim attempts (DATA converted to a HEADER)."),
		bounced:    vec("bounced_total", "Packets received with the bounce flag already set."),
		highDrops:  vec("high_lane_drops_total", "Control packets dropped because the high lane was full."),
		firstRTT:   vec("first_rtt_drops_total", "DATA packets dropped under the first-RTT drop-threshold rule."),
		queueBytes: vec("bytes", "Current combined occupancy of both lanes, in bytes."),
	}
}

// Sample records q's current counters under name, overwriting any prior
// sample for that name. Call this periodically from the simulation loop;
// calls from concurrently running replicas are serialized by the
// Registry's mutex.
func (r *Registry) Sample(name string, q *queue.AeolusQueue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[name] = QueueSample{Name: name, Stats: q.Stats, QueueSize: q.QueueSize()}
	r.publishLocked(name, r.samples[name])
}

func (r *Registry) publishLocked(name string, s QueueSample) {
	r.packets.WithLabelValues(name).Set(float64(s.Stats.Packets))
	r.headers.WithLabelValues(name).Set(float64(s.Stats.Headers))
	r.acks.WithLabelValues(name).Set(float64(s.Stats.Acks))
	r.nacks.WithLabelValues(name).Set(float64(s.Stats.Nacks))
	r.pulls.WithLabelValues(name).Set(float64(s.Stats.Pulls))
	r.stripped.WithLabelValues(name).Set(float64(s.Stats.Stripped))
	r.bounced.WithLabelValues(name).Set(float64(s.Stats.Bounced))
	r.highDrops.WithLabelValues(name).Set(float64(s.Stats.HighLaneDrops))
	r.firstRTT.WithLabelValues(name).Set(float64(s.Stats.FirstRTTDrops))
	r.queueBytes.WithLabelValues(name).Set(float64(s.QueueSize))
}

// Snapshot returns the most recent sample recorded for name, if any.
func (r *Registry) Snapshot(name string) (QueueSample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.samples[name]
	return s, ok
}

// Serve starts an HTTP server exposing the registry's metrics at /metrics
// on addr, returning once ctx is canceled or the server fails to start.
// An empty addr is treated as "don't serve" and Serve returns nil
// immediately — the CLI's `-metrics-addr` flag is optional.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics: serve %s: %w", addr, err)
	}
}
