// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model defines shared data structures for bridge communication.
// It provides the request and response types exchanged between the restricted
// front-end and the privileged execution host, whatever transport carries them.
//
// The types in this package are designed to be transport-agnostic and
// provide a stable interface for different communication protocols.
package model

import "github.com/google/uuid"

// Request asks the host to run one external program.
type Request struct {
	RequestID  string
	Executable string
	Args       []string
}

// NewRequest stamps a request with a fresh ID.
func NewRequest(executable string, args []string) Request {
	return Request{
		RequestID:  uuid.NewString(),
		Executable: executable,
		Args:       args,
	}
}

// Response is the host's answer to a Request. Err is nil on success.
type Response struct {
	RequestID string
	Stdout    string
	Err       error
}
