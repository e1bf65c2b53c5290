// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn parses and normalizes the PostgreSQL connection string used by
// the audit journal.
package dsn

import "fmt"

// DefaultPort is assumed when the DSN omits a port.
const DefaultPort = "5432"

// Info contains parsed information from a DSN string.
type Info struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// ParseError represents an error that occurred during DSN parsing.
type ParseError struct {
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid audit DSN: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid audit DSN: %s", e.Reason)
}

func parseError(reason, hint string) *ParseError {
	return &ParseError{Reason: reason, Hint: hint}
}
