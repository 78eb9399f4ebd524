// Package logging installs the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Setup routes slog through charmbracelet/log on stderr.
func Setup(verbose bool) {
	slog.SetDefault(New(os.Stderr, verbose))
}

// New returns a logger writing to w. Output is colored text on a terminal
// and JSON otherwise, so piped runs stay machine-readable.
func New(w io.Writer, verbose bool) *slog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "prfixer",
	})

	if verbose {
		handler.SetLevel(charmlog.DebugLevel)
	} else {
		handler.SetLevel(charmlog.InfoLevel)
	}

	if !isTerminal(w) {
		handler.SetFormatter(charmlog.JSONFormatter)
	}

	return slog.New(handler)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
