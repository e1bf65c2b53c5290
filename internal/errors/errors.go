// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. Every failure that crosses the command gateway (spawning
// the external client, the client rejecting an operation, unreadable output) is carried
// as an *E so callers can branch on the kind without string matching.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// SpawnFailed indicates the external client could not be started (missing or not runnable).
	SpawnFailed Kind = "spawn_failed"
	// NonZeroExit indicates the external client ran and rejected the operation.
	// The message is whatever the client wrote to its error stream.
	NonZeroExit Kind = "non_zero_exit"
	// ParseFailed indicates the client's standard output was not valid JSON lines.
	ParseFailed Kind = "parse_failed"
	// BridgeUnavailable indicates the privileged execution host could not be reached.
	BridgeUnavailable Kind = "bridge_unavailable"
	// Unsupported indicates an operation the resource does not offer.
	Unsupported Kind = "unsupported_operation"
	// InvalidArgument indicates arguments that cannot form a valid command.
	InvalidArgument Kind = "invalid_argument"
	// InvalidPlan indicates a plan file that cannot be executed.
	InvalidPlan Kind = "invalid_plan"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Stderr returns the raw text the external client reported for a NonZeroExit
// or SpawnFailed error. For other errors it returns err.Error().
func Stderr(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) && (e.Kind == NonZeroExit || e.Kind == SpawnFailed) {
		return e.Message
	}
	return err.Error()
}
