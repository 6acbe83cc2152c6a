package jsonlog

import (
	"encoding/json"
	"io"
	"log"
	"strings"
	"time"
)

type Logger struct {
	base *log.Logger
	now  func() time.Time
}

func New(w io.Writer) *Logger {
	return &Logger{
		base: log.New(w, "", 0), // no prefix; we emit JSON ourselves
		now:  time.Now,
	}
}

func (l *Logger) Info(msg string, fields map[string]any) {
	l.emit("INFO", msg, fields)
}

func (l *Logger) Warn(msg string, fields map[string]any) {
	l.emit("WARN", msg, fields)
}

func (l *Logger) Error(msg string, fields map[string]any) {
	l.emit("ERROR", msg, fields)
}

// Std returns a *log.Logger whose lines are emitted as INFO records, for
// components that take a standard logger.
func (l *Logger) Std() *log.Logger {
	return log.New(lineWriter{l}, "", 0)
}

func (l *Logger) emit(level, msg string, fields map[string]any) {
	m := make(map[string]any, 3+len(fields))
	m["ts"] = l.now().UTC().Format(time.RFC3339Nano)
	m["level"] = level
	m["msg"] = msg
	for k, v := range fields {
		m[k] = v
	}
	b, _ := json.Marshal(m)
	l.base.Print(string(b))
}

type lineWriter struct{ l *Logger }

func (w lineWriter) Write(p []byte) (int, error) {
	w.l.emit("INFO", strings.TrimRight(string(p), "\n"), nil)
	return len(p), nil
}
