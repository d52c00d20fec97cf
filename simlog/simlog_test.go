package simlog_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeolus-sim/ndpsim/simlog"
	"github.com/aeolus-sim/ndpsim/simtime"
)

func TestWritePreambleThenRecords(t *testing.T) {
	var buf bytes.Buffer
	w := simlog.New(&buf)

	require.NoError(t, w.WritePreamble(simlog.Preamble{
		PacketSizeBytes: 1500,
		Subflows:        1,
		HostNICRate:     833333,
		CoreLinkRate:    3333333,
		RTT:             simtime.FromMicros(1),
	}))
	require.NoError(t, w.Record(simtime.FromMicros(5), "flow_complete ndp_0_1 3000"))
	require.NoError(t, w.Flush())

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "# pktsize=1500 bytes", lines[0])
	assert.Equal(t, "# subflows=1", lines[1])
	assert.True(t, strings.HasPrefix(lines[5], "5000000 "))
}

func TestWritePreambleIncludesRunID(t *testing.T) {
	var buf bytes.Buffer
	w := simlog.New(&buf)

	require.NoError(t, w.WritePreamble(simlog.Preamble{
		PacketSizeBytes: 1500,
		Subflows:        1,
		RTT:             simtime.FromMicros(1),
		RunID:           "abc-123",
	}))
	require.NoError(t, w.Flush())

	assert.Contains(t, buf.String(), "# runid=abc-123")
}

func TestWritePreambleOmitsRunIDWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := simlog.New(&buf)

	require.NoError(t, w.WritePreamble(simlog.Preamble{
		PacketSizeBytes: 1500,
		Subflows:        1,
		RTT:             simtime.FromMicros(1),
	}))
	require.NoError(t, w.Flush())

	assert.NotContains(t, buf.String(), "runid")
}
