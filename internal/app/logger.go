package app

import (
	"io"

	"github.com/hashicorp/go-hclog"
)

// NewLogger returns the root logger. Components derive named sub-loggers.
func NewLogger(level hclog.Level, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "study-timer",
		Level:  level,
		Output: w,
	})
}
