/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity level of log messages
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a flag value to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds the logger configuration
type Config struct {
	Level     Level
	UseColor  bool
	JSON      bool
	Component string
	DryRun    bool
}

// Logger represents the logger instance
type Logger struct {
	config Config
	logger *log.Logger
}

var (
	mu            sync.RWMutex
	defaultLogger *Logger
)

// Initialize sets up the default logger writing to stderr
func Initialize(config Config) error {
	return InitializeWithWriter(config, os.Stderr)
}

// InitializeWithWriter sets up the default logger writing to w
func InitializeWithWriter(config Config, w io.Writer) error {
	if w == nil {
		return fmt.Errorf("logger output writer is nil")
	}
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = &Logger{
		config: config,
		logger: log.New(w, "", 0),
	}
	return nil
}

// Log writes a log message
func (l *Logger) Log(level Level, message string, fields ...Field) {
	if level < l.config.Level {
		return
	}

	entry := LogEntry{
		Time:      time.Now(),
		Level:     level.String(),
		Message:   message,
		Component: l.config.Component,
	}

	if level <= DebugLevel {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.File = file
			entry.Line = line
		}
	}

	if len(fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(fields))
		for _, field := range fields {
			entry.Fields[field.Key] = field.Value
		}
	}

	var output string
	if l.config.JSON {
		jsonBytes, _ := json.Marshal(entry)
		output = string(jsonBytes)
	} else {
		output = l.formatPretty(entry)
	}

	l.logger.Print(output)
}

var levelColors = map[string]string{
	"TRACE": "\033[37m",
	"DEBUG": "\033[36m",
	"INFO":  "\033[32m",
	"WARN":  "\033[33m",
	"ERROR": "\033[31m",
}

// formatPretty formats the log entry in a human-readable way
func (l *Logger) formatPretty(entry LogEntry) string {
	var builder strings.Builder

	builder.WriteString(entry.Time.Format("2006-01-02 15:04:05"))

	level := entry.Level
	if color, ok := levelColors[level]; ok && l.config.UseColor {
		level = color + level + "\033[0m"
	}
	builder.WriteString(fmt.Sprintf(" [%s]", level))

	if entry.Component != "" {
		builder.WriteString(fmt.Sprintf(" %s:", entry.Component))
	}

	if l.config.DryRun {
		if l.config.UseColor {
			builder.WriteString(" \033[35m[DRY-RUN]\033[0m")
		} else {
			builder.WriteString(" [DRY-RUN]")
		}
	}

	builder.WriteString(" ")
	builder.WriteString(entry.Message)

	// Sorted so that identical calls render identically.
	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		builder.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		builder.WriteString("}")
	}

	if entry.File != "" {
		builder.WriteString(fmt.Sprintf(" (%s:%d)", entry.File, entry.Line))
	}

	return builder.String()
}

// Field represents a structured field in a log entry
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// LogEntry represents a log entry
type LogEntry struct {
	Time      time.Time              `json:"time"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Convenience functions for default logger
func Trace(message string, fields ...Field) {
	if l := current(); l != nil {
		l.Log(TraceLevel, message, fields...)
	}
}

func Debug(message string, fields ...Field) {
	if l := current(); l != nil {
		l.Log(DebugLevel, message, fields...)
	}
}

func Info(message string, fields ...Field) {
	if l := current(); l != nil {
		l.Log(InfoLevel, message, fields...)
		return
	}
	// Fallback to stderr if logger not initialized
	_, _ = fmt.Fprintf(os.Stderr, "[INFO] apv: %s\n", message)
}

func Warn(message string, fields ...Field) {
	if l := current(); l != nil {
		l.Log(WarnLevel, message, fields...)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[WARN] apv: %s\n", message)
}

func Error(message string, fields ...Field) {
	if l := current(); l != nil {
		l.Log(ErrorLevel, message, fields...)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[ERROR] apv: %s\n", message)
}

// SetOutput sets the output writer for the logger
func SetOutput(w io.Writer) {
	if l := current(); l != nil {
		l.logger.SetOutput(w)
	}
}
