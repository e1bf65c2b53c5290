// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package local provides an in-process implementation of the execution bridge.
//
// The host side runs in its own goroutine and owns the process runner. The
// front-end side holds only a *Host, whose single operation is to post a
// request on a channel and wait for the reply. Each request is served by a
// fresh goroutine, so concurrent requests never wait on each other and no
// limit is applied.
package local

import (
	"context"
	"log/slog"
	"sync"

	apperrors "polarisdesk/cli/internal/errors"
	"polarisdesk/cli/internal/bridge/model"
)

// Runner executes one external program on the privileged side.
type Runner interface {
	Run(ctx context.Context, executable string, args []string) (string, error)
}

type envelope struct {
	req   model.Request
	reply chan model.Response
}

// Host is a running in-process execution host.
type Host struct {
	requests  chan envelope
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// Start launches the host goroutine. The runner is reachable only through
// the returned Host's RunCommand.
func Start(runner Runner, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{
		requests: make(chan envelope),
		done:     make(chan struct{}),
		logger:   logger,
	}
	go h.serve(runner)
	return h
}

func (h *Host) serve(runner Runner) {
	for {
		select {
		case env := <-h.requests:
			go func(env envelope) {
				// The process outlives the requester's context: callers can
				// stop waiting but cannot abort a dispatched command.
				stdout, err := runner.Run(context.Background(), env.req.Executable, env.req.Args)
				env.reply <- model.Response{RequestID: env.req.RequestID, Stdout: stdout, Err: err}
			}(env)
		case <-h.done:
			return
		}
	}
}

// RunCommand asks the host to run executable with args and waits for the
// result or for ctx to end, whichever comes first.
func (h *Host) RunCommand(ctx context.Context, executable string, args []string) (string, error) {
	env := envelope{
		req:   model.NewRequest(executable, args),
		reply: make(chan model.Response, 1),
	}
	h.logger.Debug("bridge request", "request_id", env.req.RequestID, "executable", executable)

	select {
	case <-h.done:
		return "", apperrors.New(apperrors.BridgeUnavailable, "execution host is closed")
	default:
	}

	select {
	case h.requests <- env:
	case <-h.done:
		return "", apperrors.New(apperrors.BridgeUnavailable, "execution host is closed")
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case resp := <-env.reply:
		return resp.Stdout, resp.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops accepting requests. Commands already dispatched keep running
// and their results are dropped.
func (h *Host) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}
