// Package obslog is the simulator's structured logging seam: a thin
// wrapper around github.com/joeycumines/logiface, backed by
// github.com/joeycumines/stumpy's JSON event writer.
//
// Every simulator component that wants to log takes a *[Logger] (nilable —
// every method on a nil *Logger is a no-op); nothing imports logiface or stumpy directly outside
// this package, so swapping the backend stays a one-file change.
package obslog

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Level re-exports logiface's level type so callers outside this package
// don't need to import logiface for the constant alone.
type Level = logiface.Level

// Re-exported syslog-style levels, matching logiface's own naming.
const (
	LevelDisabled = logiface.LevelDisabled
	LevelError    = logiface.LevelError
	LevelWarning  = logiface.LevelWarning
	LevelNotice   = logiface.LevelNotice
	LevelInfo     = logiface.LevelInformational
	LevelDebug    = logiface.LevelDebug
	LevelTrace    = logiface.LevelTrace
)

// Logger wraps a logiface.Logger[*stumpy.Event]. The zero value is not
// usable directly — but a nil *Logger is: every method on a nil *Logger is
// a no-op, so components can accept a *Logger without forcing every
// caller (in particular, every test) to construct one.
type Logger struct {
	inner *logiface.Logger[*stumpy.Event]
}

// New builds a Logger that writes newline-delimited JSON events to w at or
// above level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		inner: logiface.New[*stumpy.Event](
			stumpy.L.WithStumpy(stumpy.WithWriter(w)),
			logiface.WithLevel[*stumpy.Event](level),
		),
	}
}

// Default returns a Logger writing to os.Stderr at [LevelInfo].
func Default() *Logger { return New(os.Stderr, LevelInfo) }

// Builder is the fluent field-accumulator returned by the leveled methods
// below; it is a thin rename of logiface.Builder so callers of this
// package don't import logiface.
type Builder = logiface.Builder[*stumpy.Event]

// event returns a *Builder at level, or nil if l is nil or unconfigured —
// logiface.Builder's methods are all nil-receiver-safe no-ops, so logging
// never gets in the way of the hot path even when unconfigured.
func (l *Logger) event(level Level) *Builder {
	if l == nil || l.inner == nil {
		return (*logiface.Logger[*stumpy.Event])(nil).Build(level)
	}
	return l.inner.Build(level)
}

// Error starts an error-level log entry.
func (l *Logger) Error() *Builder { return l.event(LevelError) }

// Warn starts a warning-level log entry.
func (l *Logger) Warn() *Builder { return l.event(LevelWarning) }

// Info starts an informational-level log entry.
func (l *Logger) Info() *Builder { return l.event(LevelInfo) }

// Debug starts a debug-level log entry.
func (l *Logger) Debug() *Builder { return l.event(LevelDebug) }

// Trace starts a trace-level log entry, used for per-packet admission
// decisions (trim/drop/bounce) — expected to be disabled outside focused
// debugging, given simulations process millions of packets.
func (l *Logger) Trace() *Builder { return l.event(LevelTrace) }
