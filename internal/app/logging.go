package app

import (
	"io"
	"log/slog"
)

// initLogging installs a text handler on w as the default logger. Warnings
// and errors are always shown; --verbose adds debug output.
func initLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// logger returns the default logger tagged with component.
func logger(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
