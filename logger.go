package graphql

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/xid"
)

// Logger is the structured logging surface used for debug output. Key/value
// pairs follow the message, as in log/slog.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// DebugConfig selects which events are logged.
type DebugConfig struct {
	Enabled      bool
	LogQueries   bool
	LogBatches   bool
	LogCache     bool
	RequestIDGen func() string
}

// DefaultDebugConfig logs everything once Enabled is set.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogQueries:   true,
		LogBatches:   true,
		LogCache:     true,
		RequestIDGen: DefaultRequestIDGen,
	}
}

// DefaultRequestIDGen returns a globally unique, sortable id.
func DefaultRequestIDGen() string {
	return xid.New().String()
}

type simpleLogger struct {
	l *log.Logger
}

// NewSimpleLogger returns a Logger writing leveled, timestamped lines to stderr.
func NewSimpleLogger() Logger {
	return NewLoggerWithWriter(os.Stderr)
}

// NewLoggerWithWriter is NewSimpleLogger with a custom destination.
func NewLoggerWithWriter(w io.Writer) Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           log.DebugLevel,
		Prefix:          "graphql",
	})
	return &simpleLogger{l: l}
}

func (s *simpleLogger) Debug(msg string, keyvals ...any) { s.l.Debug(msg, keyvals...) }
func (s *simpleLogger) Info(msg string, keyvals ...any)  { s.l.Info(msg, keyvals...) }
func (s *simpleLogger) Warn(msg string, keyvals ...any)  { s.l.Warn(msg, keyvals...) }
func (s *simpleLogger) Error(msg string, keyvals ...any) { s.l.Error(msg, keyvals...) }
