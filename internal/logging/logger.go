package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
)

// Logger is a thin wrapper over slog that adds field-map helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger returns a human-readable debug logger in development and a JSON
// info logger everywhere else.
func NewLogger(isDevelopment bool) *Logger {
	return New(os.Stdout, isDevelopment)
}

// New builds a Logger writing to w.
func New(w io.Writer, isDevelopment bool) *Logger {
	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithFields returns a child logger carrying the given key/value pairs.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// NewStdLogger adapts l for APIs that want a *log.Logger, such as http.Server.ErrorLog.
func NewStdLogger(l *Logger) *log.Logger {
	return slog.NewLogLogger(l.Handler(), slog.LevelError)
}
