// Package logx is a small leveled logger producing println-style lines:
//
//	Info: boot mode=3 class=short
//
// It avoids fmt so the same code path works on MCU builds, where the writer
// is typically a UART.
package logx

import (
	"io"
	"sync"

	"torchcode-go/x/conv"
)

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	levelOff
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarn:
		return "Warn"
	case LevelError:
		return "Error"
	default:
		return "Off"
	}
}

// Logger writes one line per call. Safe for concurrent use.
type Logger struct {
	mu    *sync.Mutex // shared with loggers derived by With
	w     io.Writer
	min   Level
	scope string
	buf   []byte
}

// New returns a logger writing lines at or above min to w.
func New(w io.Writer, min Level) *Logger {
	return &Logger{mu: &sync.Mutex{}, w: w, min: min, buf: make([]byte, 0, 96)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger { return &Logger{min: levelOff} }

// With returns a logger whose lines are prefixed by "[scope]". The writer
// and level are shared.
func (l *Logger) With(scope string) *Logger {
	return &Logger{mu: l.mu, w: l.w, min: l.min, scope: scope, buf: make([]byte, 0, 96)}
}

func (l *Logger) Debug(msg string, kv ...any) { l.log(LevelDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(LevelInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(LevelWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.log(LevelError, msg, kv) }

// Enabled reports whether lines at lvl are written.
func (l *Logger) Enabled(lvl Level) bool { return l != nil && l.w != nil && lvl >= l.min }

func (l *Logger) log(lvl Level, msg string, kv []any) {
	if !l.Enabled(lvl) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buf[:0]
	b = append(b, lvl.String()...)
	b = append(b, ':', ' ')
	if l.scope != "" {
		b = append(b, '[')
		b = append(b, l.scope...)
		b = append(b, ']', ' ')
	}
	b = append(b, msg...)
	for i := 0; i+1 < len(kv); i += 2 {
		b = append(b, ' ')
		if k, ok := kv[i].(string); ok {
			b = append(b, k...)
		} else {
			b = append(b, '?')
		}
		b = append(b, '=')
		b = appendValue(b, kv[i+1])
	}
	if len(kv)%2 == 1 {
		b = append(b, " !extra="...)
		b = appendValue(b, kv[len(kv)-1])
	}
	b = append(b, '\n')
	_, _ = l.w.Write(b)
	l.buf = b
}

func appendValue(b []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(b, "<nil>"...)
	case string:
		return append(b, x...)
	case error:
		return append(b, x.Error()...)
	case bool:
		if x {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case int:
		return conv.AppendInt(b, int64(x))
	case int8:
		return conv.AppendInt(b, int64(x))
	case int16:
		return conv.AppendInt(b, int64(x))
	case int32:
		return conv.AppendInt(b, int64(x))
	case int64:
		return conv.AppendInt(b, x)
	case uint:
		return conv.AppendUint(b, uint64(x))
	case uint8:
		return conv.AppendUint(b, uint64(x))
	case uint16:
		return conv.AppendUint(b, uint64(x))
	case uint32:
		return conv.AppendUint(b, uint64(x))
	case uint64:
		return conv.AppendUint(b, x)
	case interface{ String() string }:
		return append(b, x.String()...)
	default:
		return append(b, '?')
	}
}
