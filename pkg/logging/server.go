package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Err is an error attr rendered in red by the server handler.
var Err = tint.Err

// NewServerHandler returns the timestamped handler used by long running
// commands.
func NewServerHandler(w io.Writer, level slog.Leveler, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    noColor,
	})
}

func NewServerLogger(level string) *slog.Logger {
	return slog.New(NewServerHandler(os.Stderr, ParseLogLevel(level), false))
}
