// Package common holds the plumbing shared by the CLI commands: logging,
// configuration and pipeline construction.
package common

import (
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

// NewLogger returns a JSON logger on stderr. --quiet keeps errors only and
// --verbose turns on debug output.
func NewLogger(c *cli.Context) *slog.Logger {
	return newLogger(os.Stderr, c.Bool("quiet"), c.Bool("verbose"))
}

func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch {
	case quiet:
		logLevel = slog.LevelError
	case verbose:
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
