// Package connmatrix generates (src, dst) host pairs for a simulation run,
// the same role `ConnectionMatrix` plays in the original simulator: given a
// routing strategy and a connection count, produce the flows a run should
// set up.
package connmatrix

import "math/rand"

// Strategy selects how connection pairs are generated, mirroring the
// original topology's RouteStrategy enum (perm/rand/pull/single), reused
// here as the connection-generation strategy rather than a path-selection
// strategy — the original conflates the two in `-strat`; this package only
// concerns itself with which (src, dst) pairs exist, leaving ECMP path
// selection to the caller (see `topology/fattree.Topology.Paths`).
type Strategy uint8

const (
	// Permutation assigns each host exactly one random, distinct
	// destination (a derangement-style permutation), matching
	// ConnectionMatrix::setRandom in the original.
	Permutation Strategy = iota
	// Random picks n random (src, dst) pairs independently, src != dst,
	// with repetition allowed across pairs.
	Random
	// Pull generates a many-to-one pattern: one randomly chosen receiver
	// shared by every connection, each from a random source other than
	// the receiver (sources may repeat) — approximating the original's
	// pull-based incast-style traffic pattern.
	Pull
	// Single generates exactly one connection, host 0 to host 1.
	Single
)

// Conn is one generated connection: a source host sending to a
// destination host.
type Conn struct {
	Src, Dst int
}

// Generate produces connections for strategy among numHosts hosts, using
// rng for all randomness. For [Single], count is ignored; for
// [Permutation], a count that is not positive or exceeds numHosts is
// replaced by numHosts; for [Random] and [Pull], a count that is not
// positive is replaced by numHosts. Generate panics if numHosts
// is less than 2: a connection matrix needs at least a source and a
// destination.
func Generate(strategy Strategy, numHosts, count int, rng *rand.Rand) []Conn {
	if numHosts < 2 {
		panic("connmatrix: numHosts must be at least 2")
	}

	switch strategy {
	case Single:
		return []Conn{{Src: 0, Dst: 1}}

	case Permutation:
		dst := rng.Perm(numHosts)
		for i := range dst {
			if dst[i] == i {
				// swap with a neighbour to avoid a host sending to
				// itself, same fixup ConnectionMatrix::setRandom
				// effectively needs for a derangement.
				j := (i + 1) % numHosts
				dst[i], dst[j] = dst[j], dst[i]
			}
		}
		n := count
		if n <= 0 || n > numHosts {
			n = numHosts
		}
		conns := make([]Conn, 0, n)
		for src := 0; src < n; src++ {
			conns = append(conns, Conn{Src: src, Dst: dst[src]})
		}
		return conns

	case Pull:
		if count <= 0 {
			count = numHosts
		}
		receiver := rng.Intn(numHosts)
		conns := make([]Conn, 0, count)
		for i := 0; i < count; i++ {
			src := rng.Intn(numHosts)
			for src == receiver {
				src = rng.Intn(numHosts)
			}
			conns = append(conns, Conn{Src: src, Dst: receiver})
		}
		return conns

	default: // Random
		if count <= 0 {
			count = numHosts
		}
		conns := make([]Conn, 0, count)
		for i := 0; i < count; i++ {
			src := rng.Intn(numHosts)
			dst := rng.Intn(numHosts)
			for dst == src {
				dst = rng.Intn(numHosts)
			}
			conns = append(conns, Conn{Src: src, Dst: dst})
		}
		return conns
	}
}

// ParseStrategy maps the CLI's `-strat` flag values to a Strategy, matching
// the original's perm/rand/pull/single strings exactly.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "perm":
		return Permutation, true
	case "rand":
		return Random, true
	case "pull":
		return Pull, true
	case "single":
		return Single, true
	default:
		return 0, false
	}
}
