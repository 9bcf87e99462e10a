// Package logging provides the viewer's leveled, module-tagged logger.
// It keeps the level set and per-level method shape of a hand-rolled
// console logger but delegates formatting and output to zerolog, so
// colored console output, timestamps and caller-free structured fields
// come from a maintained logging library instead of ad hoc ANSI codes.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors the severity classes the viewer distinguishes. Action and
// Event keep their own tag in the "kind" field of each entry, but they map
// to zerolog's Info level, so level filtering treats them exactly like
// Info.
type Level int

const (
	Debug Level = iota
	Info
	Success
	Warning
	Error
	Action
	Event
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Info, Action, Event:
		return zerolog.InfoLevel
	case Success:
		return zerolog.InfoLevel
	case Warning:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l Level) tag() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Action:
		return "action"
	case Event:
		return "event"
	default:
		return "unknown"
	}
}

// Logger is a module-scoped front end over a zerolog.Logger.
type Logger struct {
	z zerolog.Logger
}

var defaultWriter io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

// SetOutput redirects every future logger created via New to w, formatted
// as zerolog's colored console writer.
func SetOutput(w io.Writer) {
	defaultWriter = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

// New creates a logger tagged with module, filtered at minLevel.
func New(module string, minLevel Level) *Logger {
	z := zerolog.New(defaultWriter).
		Level(minLevel.zerolog()).
		With().
		Timestamp().
		Str("module", module).
		Logger()
	return &Logger{z: z}
}

var global = New("tilepilot", Debug)

// SetGlobalLevel adjusts the minimum level of the package-level default
// logger returned by the free functions below.
func SetGlobalLevel(l Level) {
	global.z = global.z.Level(l.zerolog())
}

func (l *Logger) emit(level Level, format string, args ...interface{}) {
	ev := l.z.WithLevel(level.zerolog()).Str("kind", level.tag())
	ev.Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{})   { l.emit(Debug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})    { l.emit(Info, format, args...) }
func (l *Logger) Success(format string, args ...interface{}) { l.emit(Success, format, args...) }
func (l *Logger) Warning(format string, args ...interface{}) { l.emit(Warning, format, args...) }
func (l *Logger) Error(format string, args ...interface{})   { l.emit(Error, format, args...) }
func (l *Logger) Action(format string, args ...interface{})  { l.emit(Action, format, args...) }
func (l *Logger) Event(format string, args ...interface{})   { l.emit(Event, format, args...) }

// Module returns a child logger for a named subsystem, e.g.
// logging.Global().Module("tilecache").
func (l *Logger) Module(name string) *Logger {
	return &Logger{z: l.z.With().Str("module", name).Logger()}
}

// Global returns the package default logger.
func Global() *Logger { return global }

func Debug(format string, args ...interface{})   { global.Debug(format, args...) }
func Info(format string, args ...interface{})    { global.Info(format, args...) }
func Success(format string, args ...interface{}) { global.Success(format, args...) }
func Warning(format string, args ...interface{}) { global.Warning(format, args...) }
func Error(format string, args ...interface{})   { global.Error(format, args...) }
func Action(format string, args ...interface{})  { global.Action(format, args...) }
func Event(format string, args ...interface{})   { global.Event(format, args...) }
