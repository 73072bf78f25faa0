package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // console -> human readable; anything else -> JSON
	File   string // optional extra sink
}

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Setup replaces the process logger. The returned closer releases the
// optional file sink.
func Setup(cfg Config) (io.Closer, error) {
	var w io.Writer = os.Stdout
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(w, f)
		closer = f
	}
	SetOutput(w, cfg.Level)
	return closer, nil
}

// SetOutput points the logger at w. Tests use it to capture events.
func SetOutput(w io.Writer, level string) {
	l := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	mu.Lock()
	logger = l
	mu.Unlock()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func write(ev *zerolog.Event, kind, action string, err error, fields map[string]any) {
	ev = ev.Str("kind", kind).Str("action", action)
	if err != nil {
		ev = ev.Err(err)
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Send()
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func Debug(action string, fields map[string]any) {
	write(current().Debug(), "debug", action, nil, fields)
}
func Info(action string, fields map[string]any) { write(current().Info(), "info", action, nil, fields) }

// Audit records a state change in the store.
func Audit(action string, fields map[string]any) {
	write(current().Info(), "audit", action, nil, fields)
}
func Warn(action string, err error, fields map[string]any) {
	write(current().Warn(), "warn", action, err, fields)
}
func Error(action string, err error, fields map[string]any) {
	write(current().Error(), "error", action, err, fields)
}
