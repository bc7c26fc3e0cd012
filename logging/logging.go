package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level (debug, info, warn,
// error).
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "payoff",
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	}), nil
}

// Discard is a logger for tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
