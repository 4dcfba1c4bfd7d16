package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Handlers log through this
// with request_id attached by middleware.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
