// Package simconfig resolves a simulation run's configuration from CLI
// flags with an optional YAML overlay, the way the original simulator's
// flat `argv` parsing loop in main_ndp_realistic.cpp does, generalized
// into a reusable struct for the CLI and for batch/sweep runs.
package simconfig

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aeolus-sim/ndpsim/connmatrix"
	"github.com/aeolus-sim/ndpsim/internal/obslog"
)

// ErrMissingTraceFile and ErrMissingConnCount are the two required-field
// validation failures the original CLI checks for explicitly before
// running ("Trace file should be specified" / "Number of connections
// should be specified").
var (
	ErrMissingTraceFile = errors.New("simconfig: trace file must be specified")
	ErrMissingConnCount = errors.New("simconfig: number of connections must be specified")
	ErrUnknownStrategy  = errors.New("simconfig: unknown routing strategy")
)

// Config is a fully resolved run configuration.
type Config struct {
	OutputFile  string `yaml:"output_file"`
	Subflows    int    `yaml:"subflows"`
	Conns       int    `yaml:"conns"`
	Nodes       int    `yaml:"nodes"`
	Cwnd        int    `yaml:"cwnd"`
	QueuePkts   int    `yaml:"queue_pkts"`
	TraceFile   string `yaml:"trace_file"`
	Strategy    string `yaml:"strategy"`
	Seed        int64  `yaml:"seed"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Defaults matches main_ndp_realistic.cpp's hardcoded defaults: 128
// nodes, cwnd 23 MTU-sized packets, an 8-packet queue, permutation
// routing, seed 13 (`srand(13)`).
func Defaults() Config {
	return Config{
		OutputFile: "logout.dat",
		Subflows:   1,
		Nodes:      128,
		Cwnd:       23,
		QueuePkts:  8,
		Strategy:   "perm",
		Seed:       13,
		LogLevel:   "info",
	}
}

// RegisterFlags binds cfg's fields to fs, matching the original CLI's flag
// names (`-o`, `-sub`, `-conns`, `-nodes`, `-cwnd`, `-q`, `-trace`,
// `-strat`) plus the supplemented flags a complete front end needs
// (`-seed`, `-log-level`, `-metrics-addr`, `-config`).
func RegisterFlags(fs *flag.FlagSet, cfg *Config) *string {
	fs.StringVar(&cfg.OutputFile, "o", cfg.OutputFile, "output log file")
	fs.IntVar(&cfg.Subflows, "sub", cfg.Subflows, "number of subflows per connection")
	fs.IntVar(&cfg.Conns, "conns", cfg.Conns, "number of connections/flows")
	fs.IntVar(&cfg.Nodes, "nodes", cfg.Nodes, "number of nodes in the topology")
	fs.IntVar(&cfg.Cwnd, "cwnd", cfg.Cwnd, "initial congestion window, in MTU-sized packets")
	fs.IntVar(&cfg.QueuePkts, "q", cfg.QueuePkts, "per-port buffer size, in packets")
	fs.StringVar(&cfg.TraceFile, "trace", cfg.TraceFile, "flow trace file")
	fs.StringVar(&cfg.Strategy, "strat", cfg.Strategy, "routing strategy: perm, rand, pull, single")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: error, warn, info, debug, trace")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve Prometheus /metrics on, empty disables it")
	return fs.String("config", "", "optional YAML config file overlaying these flags")
}

// LoadYAML overlays yamlPath's contents onto cfg; zero-value fields in the
// YAML file leave cfg's existing value untouched only for fields the YAML
// document doesn't mention at all (yaml.Unmarshal's normal merge-by-field
// behaviour against the existing struct value).
func LoadYAML(cfg *Config, yamlPath string) error {
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return fmt.Errorf("simconfig: read %s: %w", yamlPath, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("simconfig: parse %s: %w", yamlPath, err)
	}
	return nil
}

// Validate checks the required-field and enum-value invariants the
// original CLI enforces before starting a run.
func (c Config) Validate() error {
	if c.Conns <= 0 {
		return ErrMissingConnCount
	}
	if c.TraceFile == "" {
		return ErrMissingTraceFile
	}
	if _, ok := connmatrix.ParseStrategy(c.Strategy); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}
	return nil
}

// LogLevelValue parses LogLevel into an [obslog.Level], defaulting to
// [obslog.LevelInfo] for an empty or unrecognized value.
func (c Config) LogLevelValue() obslog.Level {
	switch c.LogLevel {
	case "error":
		return obslog.LevelError
	case "warn", "warning":
		return obslog.LevelWarning
	case "debug":
		return obslog.LevelDebug
	case "trace":
		return obslog.LevelTrace
	default:
		return obslog.LevelInfo
	}
}
