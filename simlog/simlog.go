// Package simlog writes the simulator's trace log file: a `# key=value`
// preamble recording the run's fixed parameters, followed by one record
// line per logged event — the exact format `Logfile::write` produces in
// the original simulator (see main_ndp_realistic.cpp's preamble calls).
package simlog

import (
	"bufio"
	"fmt"
	"io"

	"github.com/aeolus-sim/ndpsim/simtime"
)

// Preamble holds the run parameters recorded as `# key=value` lines before
// any event record, matching the fields main_ndp_realistic.cpp writes:
// packet size, subflow count, host/core link rates, and RTT.
type Preamble struct {
	PacketSizeBytes uint32
	Subflows        int
	HostNICRate     uint64 // packets/sec
	CoreLinkRate    uint64 // packets/sec
	RTT             simtime.Time
	// RunID correlates this log file with a specific simulation replica,
	// e.g. one leg of a parameter sweep. Empty omits the line.
	RunID string
}

// Writer is an append-only simulation log: a preamble followed by
// timestamped text records. It buffers writes and must be flushed with
// [Writer.Flush] once the run completes.
type Writer struct {
	w       *bufio.Writer
	started bool
}

// New wraps w as a log Writer.
func New(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WritePreamble writes the `# key=value` header lines. Callers write it
// exactly once, before any [Writer.Record] call.
func (lw *Writer) WritePreamble(p Preamble) error {
	lines := []string{
		fmt.Sprintf("# pktsize=%d bytes", p.PacketSizeBytes),
		fmt.Sprintf("# subflows=%d", p.Subflows),
		fmt.Sprintf("# hostnicrate = %d pkt/sec", p.HostNICRate),
		fmt.Sprintf("# corelinkrate = %d pkt/sec", p.CoreLinkRate),
		fmt.Sprintf("# rtt =%g", p.RTT.Seconds()),
	}
	if p.RunID != "" {
		lines = append(lines, fmt.Sprintf("# runid=%s", p.RunID))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(lw.w, line); err != nil {
			return fmt.Errorf("simlog: write preamble: %w", err)
		}
	}
	lw.started = true
	return nil
}

// Record appends one timestamped text record.
func (lw *Writer) Record(now simtime.Time, text string) error {
	if _, err := fmt.Fprintf(lw.w, "%d %s\n", now.Picos(), text); err != nil {
		return fmt.Errorf("simlog: write record: %w", err)
	}
	return nil
}

// Flush flushes any buffered output to the underlying writer.
func (lw *Writer) Flush() error {
	if err := lw.w.Flush(); err != nil {
		return fmt.Errorf("simlog: flush: %w", err)
	}
	return nil
}
