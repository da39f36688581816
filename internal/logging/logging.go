package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelNone
)

var (
	debug   = newLogger("D ")
	info    = newLogger("I ")
	warning = newLogger("W ")
	errorL  = newLogger("E ")

	mx     sync.Mutex
	output io.Writer = os.Stderr
	level            = LevelWarning
)

func newLogger(prefix string) *log.Logger {
	flags := log.Ldate | log.Ltime | log.LUTC
	return log.New(io.Discard, prefix, flags)
}

func init() {
	SetLevel(LevelWarning)
}

// ParseLevel converts a level name to a Level.
// Unknown names map to LevelNone.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelNone
	}
}

// SetLevel enables all loggers at or above the given level.
func SetLevel(l Level) {
	mx.Lock()
	defer mx.Unlock()
	level = l
	apply()
}

// SetOutput redirects enabled loggers to w.
func SetOutput(w io.Writer) {
	mx.Lock()
	defer mx.Unlock()
	output = w
	apply()
}

func apply() {
	loggers := []*log.Logger{debug, info, warning, errorL}
	for i, lg := range loggers {
		if Level(i) >= level {
			lg.SetOutput(output)
		} else {
			lg.SetOutput(io.Discard)
		}
	}
}

func Debug(msg string, v ...interface{}) {
	debug.Printf(msg, v...)
}

func Info(msg string, v ...interface{}) {
	info.Printf(msg, v...)
}

func Warning(msg string, v ...interface{}) {
	warning.Printf(msg, v...)
}

func Error(msg string, v ...interface{}) {
	errorL.Printf(msg, v...)
}
