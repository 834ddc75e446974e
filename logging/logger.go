package logging

import (
	"fmt"
	"strings"
)

// Level is the severity of a diagnostic entry.
type Level int

const (
	LevelInfo Level = iota
	LevelDebug
	LevelWarn
	LevelError
)

func (level Level) String() string {
	switch level {
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Field is one key of a structured DEBUG payload, fields keep the order they were logged in.
type Field struct {
	Key   string
	Value interface{}
}

func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Entry is a single diagnostic handed to a Sink.
type Entry struct {
	Level   Level
	Stage   string
	Message string
	Fields  []Field
}

func (entry Entry) String() string {
	bf := strings.Builder{}
	bf.WriteString(fmt.Sprintf("%s [%s] %s", entry.Level, entry.Stage, entry.Message))
	for _, field := range entry.Fields {
		bf.WriteString(fmt.Sprintf(" %s=%v", field.Key, field.Value))
	}
	return bf.String()
}

// Field returns the value logged under key, or nil.
func (entry Entry) Field(key string) interface{} {
	for _, field := range entry.Fields {
		if field.Key == key {
			return field.Value
		}
	}
	return nil
}

// Sink consumes diagnostics. The compiler only ever writes to it, rendering is up to the host.
type Sink interface {
	Write(entry Entry)
}

type discardSink struct{}

func (discardSink) Write(Entry) {}

// Discard is a Sink that drops everything.
var Discard Sink = discardSink{}

// Logger is the per stage front end used by the compiler. It tags entries with the stage
// name, counts errors and warnings and drops DEBUG entries when verbosity is off.
type Logger struct {
	sink    Sink
	stage   string
	verbose bool

	errorCount   int
	warningCount int
}

func NewLogger(sink Sink, stage string, verbose bool) *Logger {
	if sink == nil {
		sink = Discard
	}
	return &Logger{sink: sink, stage: stage, verbose: verbose}
}

// ForStage returns a logger writing to the same sink with the same verbosity under another stage name.
func (logger *Logger) ForStage(stage string) *Logger {
	return NewLogger(logger.sink, stage, logger.verbose)
}

func (logger *Logger) Stage() string {
	return logger.stage
}

func (logger *Logger) Verbose() bool {
	return logger.verbose
}

func (logger *Logger) Info(format string, args ...interface{}) {
	logger.write(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Debug logs a structured payload. It is a no-op when verbosity is off.
func (logger *Logger) Debug(message string, fields ...Field) {
	if !logger.verbose {
		return
	}
	logger.write(LevelDebug, message, fields)
}

func (logger *Logger) Warn(format string, args ...interface{}) {
	logger.warningCount++
	logger.write(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (logger *Logger) Error(format string, args ...interface{}) {
	logger.errorCount++
	logger.write(LevelError, fmt.Sprintf(format, args...), nil)
}

func (logger *Logger) ErrorCount() int {
	return logger.errorCount
}

func (logger *Logger) WarningCount() int {
	return logger.warningCount
}

func (logger *Logger) write(level Level, message string, fields []Field) {
	logger.sink.Write(Entry{Level: level, Stage: logger.stage, Message: message, Fields: fields})
}
