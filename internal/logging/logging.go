// Package logging configures the process-wide slog default. Output goes to
// stderr so create runs can still pipe a manifest through stdout cleanly.
// Default level is warn; --verbose raises to info, --debug to debug with
// source locations. Every run is tagged with a short run id so interleaved
// logs from scripted invocations stay attributable.
package logging

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

func Setup(verbose, debug bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(h).With("run", uuid.NewString()[:8]))

	if debug {
		slog.Debug("debug logging enabled")
	}
}
