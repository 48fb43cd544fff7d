package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Level represents logging severity.
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var (
	currentLevel     atomic.Int32
	currentVerbosity atomic.Int32

	fileMu  sync.Mutex
	fileLog *log.Logger
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	currentLevel.Store(int32(LevelWarn))
}

// SetVerbosity configures console output from count of -v flags (0-4).
func SetVerbosity(count int) {
	if count < 0 {
		count = 0
	}
	if count > 4 {
		count = 4
	}
	currentVerbosity.Store(int32(count))
	switch count {
	case 0:
		currentLevel.Store(int32(LevelWarn))
	case 1:
		currentLevel.Store(int32(LevelInfo))
	case 2:
		currentLevel.Store(int32(LevelDebug))
	default:
		currentLevel.Store(int32(LevelTrace))
	}
}

// Verbosity returns the stored -v count.
func Verbosity() int {
	return int(currentVerbosity.Load())
}

// LevelName returns current level label.
func LevelName() string {
	return LevelToString(Level(currentLevel.Load()))
}

// LevelToString converts a Level to human readable text.
func LevelToString(l Level) string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// ParseLevel returns Level + verbosity count from string.
func ParseLevel(s string) (Level, int, error) {
	switch strings.ToLower(s) {
	case "error":
		return LevelError, 0, nil
	case "warn", "warning":
		return LevelWarn, 0, nil
	case "info":
		return LevelInfo, 1, nil
	case "debug":
		return LevelDebug, 2, nil
	case "trace":
		return LevelTrace, 4, nil
	default:
		return LevelWarn, Verbosity(), fmt.Errorf("unknown level %s", s)
	}
}

// SetFile mirrors every message up to debug into the file at path,
// independent of console verbosity. The returned closer detaches the file.
func SetFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetFileWriter(f)
	return closerFunc(func() error {
		SetFileWriter(nil)
		return f.Close()
	}), nil
}

// SetFileWriter replaces the debug sink. A nil writer disables it.
func SetFileWriter(w io.Writer) {
	fileMu.Lock()
	defer fileMu.Unlock()
	if w == nil {
		fileLog = nil
		return
	}
	fileLog = log.New(w, "", log.LstdFlags|log.Lmicroseconds)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func shouldLog(l Level) bool {
	return l <= Level(currentLevel.Load())
}

func logf(l Level, prefix, format string, args ...any) {
	fileMu.Lock()
	fl := fileLog
	fileMu.Unlock()

	toConsole := shouldLog(l)
	toFile := fl != nil && l <= LevelDebug
	if !toConsole && !toFile {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if toConsole {
		log.Printf("[%s] %s", strings.ToUpper(prefix), msg)
	}
	if toFile {
		fl.Printf("%-5s %s", strings.ToUpper(prefix), msg)
	}
}

// Errorf always prints.
func Errorf(format string, args ...any) {
	logf(LevelError, "err", format, args...)
}

func Warnf(format string, args ...any) {
	logf(LevelWarn, "warn", format, args...)
}

func Infof(format string, args ...any) {
	logf(LevelInfo, "info", format, args...)
}

func Debugf(format string, args ...any) {
	logf(LevelDebug, "dbg", format, args...)
}

func Tracef(format string, args ...any) {
	logf(LevelTrace, "trc", format, args...)
}
