// Package xlog implements a small structured logger in the style of
// go-ethereum's log package: leveled calls taking alternating key/value
// pairs, with caller-frame capture via go-stack/stack.
package xlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Level is a logging severity.
type Level int

const (
	LvlCrit Level = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Level) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Logger writes leveled, contextual log lines. A Logger is immutable;
// New returns a child logger with extra context appended.
type Logger struct {
	ctx []interface{}
	out *writer
}

type writer struct {
	mu     sync.Mutex
	w      io.Writer
	minLvl Level
}

// Root is the default logger, writing to stderr at LvlInfo.
var Root = &Logger{out: &writer{w: os.Stderr, minLvl: LvlInfo}}

// SetLevel adjusts the minimum level written by the root logger's writer.
// All child loggers derived from Root share the same writer, so this
// affects them too.
func SetLevel(l Level) {
	Root.out.mu.Lock()
	Root.out.minLvl = l
	Root.out.mu.Unlock()
}

// New returns a child logger with the given key/value pairs appended to
// every subsequent line, e.g. xlog.Root.New("component", "engine").
func (l *Logger) New(ctx ...interface{}) *Logger {
	merged := make([]interface{}, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &Logger{ctx: merged, out: l.out}
}

func (l *Logger) log(lvl Level, msg string, ctx []interface{}) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if lvl > l.out.minLvl {
		return
	}
	var caller string
	if lvl <= LvlWarn || lvl == LvlTrace {
		c := stack.Caller(2)
		caller = fmt.Sprintf("%+v", c)
	}
	line := fmt.Sprintf("%s[%s] %s", time.Now().UTC().Format("15:04:05.000"), lvl, msg)
	all := make([]interface{}, 0, len(l.ctx)+len(ctx))
	all = append(all, l.ctx...)
	all = append(all, ctx...)
	for i := 0; i+1 < len(all); i += 2 {
		line += fmt.Sprintf(" %v=%v", all[i], all[i+1])
	}
	if caller != "" {
		line += fmt.Sprintf(" caller=%s", caller)
	}
	fmt.Fprintln(l.out.w, line)
}

func (l *Logger) Trace(msg string, ctx ...interface{}) { l.log(LvlTrace, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LvlDebug, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LvlInfo, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LvlWarn, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LvlError, msg, ctx) }
func (l *Logger) Crit(msg string, ctx ...interface{})  { l.log(LvlCrit, msg, ctx) }
