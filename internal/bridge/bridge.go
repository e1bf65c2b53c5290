// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge defines the boundary between the restricted front-end and the
// privileged context that is allowed to start processes. The front-end holds a
// Bridge and nothing else: its only capability is to ask for one external
// program to be run with one argument vector and to receive stdout or the
// failure.
//
// Two transports are provided: an in-process host goroutine reached by channel
// message passing, and a gRPC client for a separate `polarisdesk host` process
// listening on a Unix socket.
package bridge

import (
	"context"
	"log/slog"

	"polarisdesk/cli/internal/bridge/grpcclient"
	"polarisdesk/cli/internal/bridge/local"
	"polarisdesk/cli/internal/hostexec"
)

// Bridge represents a connection to the privileged execution host.
type Bridge interface {
	// RunCommand runs executable with args and returns its stdout. On failure
	// the error carries the captured stderr (see internal/errors).
	RunCommand(ctx context.Context, executable string, args []string) (string, error)
	Close() error
}

// Options selects the transport.
type Options struct {
	// SocketPath of a running `polarisdesk host`. Empty selects the in-process host.
	SocketPath string
	Logger     *slog.Logger
}

// New creates a bridge instance.
func New(opts Options) (Bridge, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SocketPath == "" {
		return local.Start(&hostexec.Runner{Logger: logger}, logger), nil
	}
	c, err := grpcclient.Dial(opts.SocketPath)
	if err != nil {
		return nil, err
	}
	c.Logger = logger
	return c, nil
}
