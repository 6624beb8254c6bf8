// Package logger provides leveled logging for the scanner service.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

type leveledLogger struct {
	level  Level
	logger *log.Logger
}

var defaultLogger *leveledLogger

// Init initializes the default logger with the specified level and format.
func Init(level string, format string) {
	InitWithWriter(level, format, os.Stderr)
}

// InitWithWriter is Init with an explicit output destination, used by tests.
func InitWithWriter(level string, format string, w io.Writer) {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	defaultLogger = &leveledLogger{
		level:  ParseLevel(level),
		logger: log.New(w, "", flags),
	}
}

func output(l Level, tag, format string, args ...any) {
	if defaultLogger == nil || defaultLogger.level > l {
		return
	}
	_ = defaultLogger.logger.Output(3, fmt.Sprintf(tag+format, args...))
}

func Debug(format string, args ...any) {
	output(DebugLevel, "[DEBUG] ", format, args...)
}

func Info(format string, args ...any) {
	output(InfoLevel, "[INFO] ", format, args...)
}

func Warn(format string, args ...any) {
	output(WarnLevel, "[WARN] ", format, args...)
}

func Error(format string, args ...any) {
	output(ErrorLevel, "[ERROR] ", format, args...)
}

func Fatal(format string, args ...any) {
	msg := fmt.Sprintf("[FATAL] "+format, args...)
	if defaultLogger != nil {
		_ = defaultLogger.logger.Output(3, msg)
	}
	os.Exit(1)
}
