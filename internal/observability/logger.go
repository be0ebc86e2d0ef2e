package observability

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

func Logger() *slog.Logger {
	return logger
}

// SetLogger replaces the process-wide logger, e.g. to raise the level from the CLI.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// WithFields returns a logger with additional fields.
func WithFields(kv ...any) *slog.Logger {
	return logger.With(kv...)
}
