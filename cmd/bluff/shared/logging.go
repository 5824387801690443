package shared

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger returns a timestamped logger writing to w at the named level.
// An unknown level falls back to info.
func SetupLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
}
