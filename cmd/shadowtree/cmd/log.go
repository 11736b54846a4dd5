package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-drift/shadow/pkg/errors"
)

// newLogger configures the process logger and routes tree errors and
// protocol violations through it.
func newLogger(w io.Writer, format string, verbose bool) (zerolog.Logger, error) {
	var output io.Writer
	switch format {
	case "console", "":
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
		output = w
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q (want console or json)", format)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", "shadowtree").Logger()
	errors.SetHandler(errors.NewLogHandlerWithLogger(logger, verbose))
	return logger, nil
}
