// Package logging builds the structured logger shared by every component.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// Options selects the level and output format
type Options struct {
	Level  string // trace, debug, info, warn, error
	Format string // console or json
}

// New returns a logger writing to w (stderr when nil). Unknown levels
// fall back to info, unknown formats to console.
func New(opts Options, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := &log.Logger{
		Level:      log.ParseLevel(strings.ToLower(opts.Level)),
		TimeFormat: "15:04:05",
	}

	if strings.EqualFold(opts.Format, "json") {
		logger.TimeFormat = ""
		logger.Writer = &log.IOWriter{Writer: w}
		return logger
	}

	logger.Writer = &log.ConsoleWriter{
		Writer:         w,
		ColorOutput:    isTerminal(w),
		EndWithMessage: true,
	}
	return logger
}

// Discard returns a logger that drops everything, for tests
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return log.IsTerminal(f.Fd())
}
