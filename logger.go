package action

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Logger is the runtime logging contract. It matches the go-logger surface so
// a glog.Logger can back it with a thin wrapper.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger extends Logger with structured-field support. The controller
// uses it, when available, to stamp every pipeline entry with the action name.
type FieldsLogger interface {
	WithFields(map[string]any) Logger
}

type level uint8

const (
	levelTrace level = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
	levelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// field is one bound key/value pair; a logger's pairs stay sorted by key so
// output is deterministic.
type field struct {
	key   string
	value any
}

// FmtLogger is the in-package fallback used when no external logger is wired.
// Each entry is a single line: timestamp, level, message, bound fields.
type FmtLogger struct {
	out io.Writer
	kv  []field
}

// NewFmtLogger constructs a fallback logger writing to stdout when out is nil.
func NewFmtLogger(out io.Writer) *FmtLogger {
	if out == nil {
		out = os.Stdout
	}
	return &FmtLogger{out: out}
}

func (l *FmtLogger) Trace(msg string, args ...any) { l.emit(levelTrace, msg, args...) }
func (l *FmtLogger) Debug(msg string, args ...any) { l.emit(levelDebug, msg, args...) }
func (l *FmtLogger) Info(msg string, args ...any)  { l.emit(levelInfo, msg, args...) }
func (l *FmtLogger) Warn(msg string, args ...any)  { l.emit(levelWarn, msg, args...) }
func (l *FmtLogger) Error(msg string, args ...any) { l.emit(levelError, msg, args...) }
func (l *FmtLogger) Fatal(msg string, args ...any) { l.emit(levelFatal, msg, args...) }

// WithContext satisfies the Logger contract; the fallback has no per-context
// state to carry.
func (l *FmtLogger) WithContext(context.Context) Logger {
	if l == nil {
		return NewFmtLogger(nil)
	}
	return l
}

// WithFields returns a logger with fields bound to every entry. Later values
// win over already-bound keys.
func (l *FmtLogger) WithFields(fields map[string]any) Logger {
	if l == nil {
		return NewFmtLogger(nil)
	}
	merged := make(map[string]any, len(l.kv)+len(fields))
	for _, f := range l.kv {
		merged[f.key] = f.value
	}
	for k, v := range fields {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]field, 0, len(keys))
	for _, k := range keys {
		kv = append(kv, field{key: k, value: merged[k]})
	}
	return &FmtLogger{out: l.out, kv: kv}
}

func (l *FmtLogger) emit(lv level, msg string, args ...any) {
	if l == nil {
		l = NewFmtLogger(nil)
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(levelNames[lv])
	b.WriteByte(' ')
	b.WriteString(strings.TrimSpace(msg))
	for _, f := range l.kv {
		fmt.Fprintf(&b, " %s=%v", f.key, f.value)
	}
	fmt.Fprintln(l.out, b.String())
}

func normalizeLogger(logger Logger) Logger {
	if logger == nil {
		return NewFmtLogger(nil)
	}
	return logger
}

func withLoggerFields(logger Logger, fields map[string]any) Logger {
	if logger == nil {
		return NewFmtLogger(nil)
	}
	if fl, ok := logger.(FieldsLogger); ok {
		return fl.WithFields(fields)
	}
	return logger
}
