// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	apperrors "polarisdesk/cli/internal/errors"
)

// ClientErrorType represents the category of an external client failure.
type ClientErrorType int

const (
	ClientErrorUnknown ClientErrorType = iota
	ClientErrorAlreadyExists
	ClientErrorNotFound
	ClientErrorForbidden
	ClientErrorUnauthenticated
	ClientErrorUnreachable
	ClientErrorUsage
)

// ClassifyClientError categorizes the text the external client wrote to stderr.
func ClassifyClientError(stderr string) ClientErrorType {
	lower := strings.ToLower(stderr)

	// Check for specific error patterns
	if strings.Contains(lower, "already exists") || strings.Contains(lower, "409") {
		return ClientErrorAlreadyExists
	}
	if strings.Contains(lower, "not found") || strings.Contains(lower, "notfound") || strings.Contains(lower, "404") {
		return ClientErrorNotFound
	}
	if strings.Contains(lower, "forbidden") || strings.Contains(lower, "403") || strings.Contains(lower, "permission denied") {
		return ClientErrorForbidden
	}
	if strings.Contains(lower, "unauthorized") || strings.Contains(lower, "notauthorized") || strings.Contains(lower, "401") || strings.Contains(lower, "invalid_client") {
		return ClientErrorUnauthenticated
	}
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "max retries exceeded") || strings.Contains(lower, "name or service not known") {
		return ClientErrorUnreachable
	}
	if strings.Contains(lower, "usage:") || strings.Contains(lower, "the following arguments are required") {
		return ClientErrorUsage
	}

	return ClientErrorUnknown
}

// FormatFailure formats a gateway failure in a user-friendly way. The raw
// client text is kept as technical details, masked.
func FormatFailure(action string, err error) string {
	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Failed to " + action))
	builder.WriteString("\n\n")

	switch apperrors.KindOf(err) {
	case apperrors.SpawnFailed:
		builder.WriteString("The external client could not be started.\n")
		builder.WriteString("  • Check the --cli-path setting (or POLARIS_CLI_PATH)\n")
		builder.WriteString("  • Make sure the file exists and is executable\n")
	case apperrors.ParseFailed:
		builder.WriteString("The external client returned output that is not JSON lines.\n")
		builder.WriteString("  • The client version may not match this console\n")
	case apperrors.BridgeUnavailable:
		builder.WriteString(describeBridgeError(err))
	case apperrors.Unsupported:
		builder.WriteString("This resource does not offer that operation.\n")
	default:
		builder.WriteString(describeClientError(apperrors.Stderr(err)))
	}

	if details := strings.TrimSpace(apperrors.Stderr(err)); details != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(details)))
	}
	return builder.String()
}

func describeClientError(stderr string) string {
	switch ClassifyClientError(stderr) {
	case ClientErrorAlreadyExists:
		return "An entity with that name already exists.\n"
	case ClientErrorNotFound:
		return "The entity does not exist (it may have been removed already).\n"
	case ClientErrorForbidden:
		return "The service denied the operation for these credentials.\n"
	case ClientErrorUnauthenticated:
		return "The service rejected the client id / client secret.\n  • Run 'polarisdesk configure' to update them\n"
	case ClientErrorUnreachable:
		return "The external client could not reach the service.\n  • Check --host and --port\n"
	case ClientErrorUsage:
		return "The external client did not accept the arguments.\n  • Its version may expect a different grammar\n"
	default:
		return "The external client rejected the operation.\n"
	}
}

// FprintFailure writes the FormatFailure rendering to w, framed by blank
// lines.
func FprintFailure(w io.Writer, action string, err error) {
	fmt.Fprintf(w, "\n%s\n\n", FormatFailure(action, err))
}
