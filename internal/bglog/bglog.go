// Package bglog provides the runtime's default hclog setup: a single
// leveled logger that a host (such as the command-line demo) builds and
// hands to the event loop via Graph.SetLogger, so that the host's lines
// and the graph's traces share one format and level handling.
package bglog

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Options configures New. The zero value logs at Info level to stderr
// with color auto-detected from the output stream.
type Options struct {
	Name  string
	Level hclog.Level
	Out   io.Writer
	// JSON switches to structured JSON output, for hosts that ship logs to
	// a collector rather than a terminal.
	JSON bool
}

// New builds the default logger for a graph or a host around it.
func New(opts Options) hclog.Logger {
	if opts.Out == nil {
		opts.Out = os.Stderr
	}
	if opts.Level == hclog.NoLevel {
		opts.Level = hclog.Info
	}
	name := opts.Name
	if name == "" {
		name = "bg"
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		Level:           opts.Level,
		Output:          opts.Out,
		Color:           hclog.AutoColor,
		JSONFormat:      opts.JSON,
		IncludeLocation: false,
	})
}

// Discard is a logger that drops everything, for tests and hosts that don't
// want event loop tracing at all.
func Discard() hclog.Logger { return hclog.NewNullLogger() }
