// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pterm/pterm"
)

// New returns a structured logger rendered by pterm. level is one of
// trace, debug, info, warn, error; anything else means info.
func New(level string, w io.Writer) *slog.Logger {
	logger := pterm.DefaultLogger.WithLevel(ParseLevel(level)).WithWriter(w)
	return slog.New(pterm.NewSlogHandler(logger))
}

// ParseLevel maps a config/flag level name to a pterm log level.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelInfo
	}
}
