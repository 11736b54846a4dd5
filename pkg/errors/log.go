package errors

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogHandler is an ErrorHandler that writes structured log lines.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool

	logger zerolog.Logger
}

// NewLogHandler returns a LogHandler writing human-readable lines to w.
// A nil writer logs to stderr.
func NewLogHandler(w io.Writer, verbose bool) *LogHandler {
	if w == nil {
		w = os.Stderr
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return &LogHandler{
		Verbose: verbose,
		logger:  zerolog.New(output).With().Timestamp().Str("component", "shadow").Logger(),
	}
}

// NewLogHandlerWithLogger wraps an existing zerolog logger.
func NewLogHandlerWithLogger(logger zerolog.Logger, verbose bool) *LogHandler {
	return &LogHandler{Verbose: verbose, logger: logger}
}

// Logger returns the underlying logger.
func (h *LogHandler) Logger() zerolog.Logger {
	return h.logger
}

// HandleError logs a ShadowError.
func (h *LogHandler) HandleError(err *ShadowError) {
	if err == nil {
		return
	}
	ev := h.logger.Error().Str("op", err.Op).Stringer("kind", err.Kind)
	if err.Tag != 0 {
		ev = ev.Int32("tag", err.Tag)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Err(err.Err).Msg("shadow error")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := h.logger.Error().Interface("value", err.Value)
	if err.Op != "" {
		ev = ev.Str("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("shadow panic")
}

// HandleProtocolError logs a ProtocolError.
func (h *LogHandler) HandleProtocolError(err *ProtocolError) {
	if err == nil {
		return
	}
	h.logger.Error().
		Str("op", err.Op).
		Int32("tag", err.Tag).
		Str("component", err.Component).
		Msg(err.Reason)
}
