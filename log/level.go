package log

import (
	"fmt"
	"strings"
)

type LogLevel int

const (
	Debug LogLevel = iota
	Info
	Warn
	Error
	Fatal
)

var levelNames = map[LogLevel]string{
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
	Fatal: "FATAL",
}

var levelColors = map[LogLevel]string{
	Debug: "\033[34m",
	Info:  "\033[32m",
	Warn:  "\033[33m",
	Error: "\033[31m",
	Fatal: "\033[35m",
}

const colorReset = "\033[0m"

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

func (l LogLevel) color() string {
	if color, ok := levelColors[l]; ok {
		return color
	}
	return colorReset
}

// ParseLevel accepts the level names case-insensitively.
func ParseLevel(level string) (LogLevel, error) {
	upper := strings.ToUpper(strings.TrimSpace(level))
	for l, name := range levelNames {
		if name == upper {
			return l, nil
		}
	}
	return Info, fmt.Errorf("invalid log level '%s'", level)
}
