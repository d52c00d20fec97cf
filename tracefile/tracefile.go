// Package tracefile reads flow-size trace files: whitespace-separated
// "flow_size_bytes start_time_seconds" records, one per line, in the
// format the original simulator's main loop reads with a plain
// `getline`+`istringstream` pair per connection.
package tracefile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aeolus-sim/ndpsim/simtime"
)

// Flow is one parsed trace record.
type Flow struct {
	SizeBytes uint64
	StartTime simtime.Time
}

// Read parses trace records from r, one per non-empty line. A malformed
// line is reported as an error naming its 1-indexed line number — trace
// files are operator-authored input, so a parse failure is recoverable
// configuration data, not a simulator-invariant violation.
func Read(r io.Reader) ([]Flow, error) {
	var flows []Flow
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("tracefile: line %d: want 2 fields, got %d", line, len(fields))
		}
		size, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tracefile: line %d: flow size: %w", line, err)
		}
		startSec, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("tracefile: line %d: start time: %w", line, err)
		}
		flows = append(flows, Flow{SizeBytes: size, StartTime: simtime.FromSeconds(startSec)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tracefile: %w", err)
	}
	return flows, nil
}

// ReadFile opens and parses a single trace file.
func ReadFile(path string) ([]Flow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tracefile: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// ReadFiles parses every path in paths concurrently, bounded to limit
// in-flight files at once, and returns one slice of flows per path, in the
// same order as paths — the concurrency is purely an I/O-bound-parsing
// optimization for the multi-file batch/sweep case; per-file record order
// and path order are always preserved regardless of completion order.
// limit <= 0 means unbounded.
func ReadFiles(ctx context.Context, paths []string, limit int) ([][]Flow, error) {
	results := make([][]Flow, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			flows, err := ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = flows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
