package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a root Logger.
type Options struct {
	Level LogLevel
	// File enables rotated file output when set.
	File       string
	NoTerminal bool
	NoColor    bool
	JSON       bool
	Rotation   Rotation
}

// Rotation mirrors the lumberjack settings.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation keeps five 128 MB files for at most 16 days.
var DefaultRotation = Rotation{MaxSizeMB: 128, MaxBackups: 5, MaxAgeDays: 16}

// sink is shared by a root Logger and all of its named children.
type sink struct {
	mu     sync.Mutex
	writer io.Writer
	closer io.Closer
}

type Logger struct {
	sink *sink

	name       string
	level      LogLevel
	timeFormat string
	color      bool
	json       bool
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// New builds a root logger writing to stdout and, optionally, a rotated file.
func New(name string, opts Options) *Logger {
	var writers []io.Writer
	var closer io.Closer

	if !opts.NoTerminal {
		writers = append(writers, os.Stdout)
	}

	if opts.File != "" {
		rotation := opts.Rotation
		if rotation == (Rotation{}) {
			rotation = DefaultRotation
		}

		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
			Compress:   rotation.Compress,
		}
		writers = append(writers, file)
		closer = file
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	l := NewWithWriter(name, opts.Level, io.MultiWriter(writers...))
	l.sink.closer = closer
	l.color = !opts.NoTerminal && !opts.NoColor && opts.File == ""
	l.json = opts.JSON
	return l
}

// NewWithWriter builds an uncolored logger on top of w.
func NewWithWriter(name string, level LogLevel, w io.Writer) *Logger {
	return &Logger{
		sink:       &sink{writer: w},
		name:       name,
		level:      level,
		timeFormat: "2006-01-02 15:04:05",
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter("", Fatal+1, io.Discard)
}

func (l *Logger) Level() LogLevel {
	return l.level
}

// SetLevel changes the level of this logger only; existing children keep theirs.
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.level
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	timestamp := time.Now().Format(l.timeFormat)
	formatted := fmt.Sprintf(msg, args...)

	var line string
	if l.json {
		raw, _ := json.Marshal(logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Component: l.name,
			Message:   formatted,
		})
		line = string(raw)
	} else {
		prefix := fmt.Sprintf("[%s] %-5s", timestamp, level)
		if l.name != "" {
			prefix = fmt.Sprintf("%s [%s]", prefix, l.name)
		}
		line = prefix + " " + formatted
		if l.color {
			line = level.color() + line + colorReset
		}
	}

	l.sink.mu.Lock()
	fmt.Fprintln(l.sink.writer, line)
	l.sink.mu.Unlock()

	if level == Fatal {
		os.Exit(1)
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.log(Fatal, msg, args...)
}

// Named returns a child sharing the output, with name appended as "parent/name".
func (l *Logger) Named(name string) *Logger {
	child := *l
	if l.name != "" {
		child.name = l.name + "/" + name
	} else {
		child.name = name
	}
	return &child
}

// Close releases the rotated file, if any.
func (l *Logger) Close() error {
	if l.sink.closer == nil {
		return nil
	}
	return l.sink.closer.Close()
}
