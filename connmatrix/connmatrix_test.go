package connmatrix_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeolus-sim/ndpsim/connmatrix"
)

func TestParseStrategy(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want connmatrix.Strategy
		ok   bool
	}{
		{"perm", connmatrix.Permutation, true},
		{"rand", connmatrix.Random, true},
		{"pull", connmatrix.Pull, true},
		{"single", connmatrix.Single, true},
		{"bogus", 0, false},
	} {
		got, ok := connmatrix.ParseStrategy(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestGenerateSingle(t *testing.T) {
	conns := connmatrix.Generate(connmatrix.Single, 10, 5, rand.New(rand.NewSource(1)))
	require.Len(t, conns, 1)
	assert.Equal(t, connmatrix.Conn{Src: 0, Dst: 1}, conns[0])
}

func TestGeneratePermutationNeverSelfSends(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	conns := connmatrix.Generate(connmatrix.Permutation, 20, 20, rng)
	require.Len(t, conns, 20)
	for _, c := range conns {
		assert.NotEqual(t, c.Src, c.Dst)
	}
}

func TestGenerateRandomNeverSelfSends(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	conns := connmatrix.Generate(connmatrix.Random, 5, 50, rng)
	require.Len(t, conns, 50)
	for _, c := range conns {
		assert.NotEqual(t, c.Src, c.Dst)
		assert.GreaterOrEqual(t, c.Src, 0)
		assert.Less(t, c.Src, 5)
	}
}

func TestGeneratePullSharesOneDestination(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	conns := connmatrix.Generate(connmatrix.Pull, 10, 30, rng)
	require.Len(t, conns, 30)
	dst := conns[0].Dst
	for _, c := range conns {
		assert.Equal(t, dst, c.Dst)
		assert.NotEqual(t, c.Src, dst)
	}
}

func TestGeneratePanicsBelowTwoHosts(t *testing.T) {
	assert.Panics(t, func() {
		connmatrix.Generate(connmatrix.Random, 1, 1, rand.New(rand.NewSource(1)))
	})
}
