// Package corelog is a thin leveled shim over the standard log package.
// Every core subsystem logs through a tagged Logger instead of calling
// log.Printf directly, so output can be silenced per-subsystem in tests
// without touching call sites.
package corelog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Level orders the verbosity a Logger accepts; a message below the
// configured level is dropped before formatting.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var globalLevel atomic.Int32

// SetGlobalLevel changes the minimum level every Logger created through
// New honors going forward. Loggers read it on each call, not once at
// construction, so a single SetGlobalLevel affects all of them live.
func SetGlobalLevel(l Level) { globalLevel.Store(int32(l)) }

func currentGlobalLevel() Level { return Level(globalLevel.Load()) }

// Logger tags every line with a bracketed subsystem name, matching the
// engine's "[CLEANER] message" convention.
type Logger struct {
	tag    string
	std    *log.Logger
	minLvl atomic.Int32 // -1 means "use global"
}

// New returns a Logger that writes to os.Stderr tagged with name.
func New(name string) *Logger {
	l := &Logger{
		tag: name,
		std: log.New(os.Stderr, "", log.LstdFlags),
	}
	l.minLvl.Store(-1)
	return l
}

// NewTo returns a Logger writing to an arbitrary destination; tests use
// this with io.Discard or a bytes.Buffer.
func NewTo(name string, w io.Writer) *Logger {
	l := &Logger{
		tag: name,
		std: log.New(w, "", log.LstdFlags),
	}
	l.minLvl.Store(-1)
	return l
}

// SetLevel overrides the global level for this Logger only.
func (l *Logger) SetLevel(lvl Level) { l.minLvl.Store(int32(lvl)) }

func (l *Logger) effectiveLevel() Level {
	if v := l.minLvl.Load(); v >= 0 {
		return Level(v)
	}
	return currentGlobalLevel()
}

func (l *Logger) log(lvl Level, format string, args ...any) {
	if lvl < l.effectiveLevel() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.std.Printf("[%s] %s: %s", l.tag, lvl, msg)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

// Discard returns a Logger that writes nowhere, for tests that want
// corelog call sites to run without polluting test output.
func Discard(name string) *Logger { return NewTo(name, io.Discard) }
