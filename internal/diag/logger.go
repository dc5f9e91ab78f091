package diag

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Level is a logger's verbosity threshold.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
)

// Logger is plx's plain leveled logger: timestamped fmt/os-style lines
// to a writer, no structured fields or third-party backend. The
// teacher repo carries no logging library (every internal package logs
// via bare fmt.Printf/log.Printf), so this keeps that texture rather
// than reach for one (see DESIGN.md).
type Logger struct {
	out     io.Writer
	level   Level
	nowFunc func() time.Time
}

// NewLogger returns a Logger writing to w at the given level.
func NewLogger(w io.Writer, level Level) *Logger {
	return &Logger{out: w, level: level, nowFunc: time.Now}
}

// Default returns a Logger writing to stderr at LevelInfo, the
// baseline every `plx` CLI command starts with before `--verbose` is
// parsed.
func Default() *Logger { return NewLogger(os.Stderr, LevelInfo) }

func (l *Logger) stamp() string { return l.nowFunc().Format("15:04:05.000") }

// Info logs a message unconditionally.
func (l *Logger) Info(format string, args ...any) {
	fmt.Fprintf(l.out, "[%s] %s\n", l.stamp(), fmt.Sprintf(format, args...))
}

// Verbose logs a message only when the logger's level is LevelVerbose,
// the `--verbose`/`-V` flag's effect on every plx subcommand.
func (l *Logger) Verbose(format string, args ...any) {
	if l.level < LevelVerbose {
		return
	}
	fmt.Fprintf(l.out, "[%s] %s\n", l.stamp(), fmt.Sprintf(format, args...))
}
