// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package executor runs built commands through the execution bridge and
// collapses every outcome into a Result. It never starts processes itself.
package executor

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"polarisdesk/cli/internal/audit"
	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/errors"
)

// Bridge is the only capability the executor needs from the privileged side.
type Bridge interface {
	RunCommand(ctx context.Context, executable string, args []string) (string, error)
}

// Result is the outcome of one execution. Failure is nil on success, in which
// case Stdout may be empty.
type Result struct {
	Stdout  string
	Failure *errors.E
}

func Success(stdout string) Result { return Result{Stdout: stdout} }
func Failed(failure *errors.E) Result { return Result{Failure: failure} }

// OK reports whether the command succeeded.
func (r Result) OK() bool { return r.Failure == nil }

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Executor dispatches commands over a Bridge.
type Executor struct {
	Bridge Bridge
	// Journal receives one entry per execution. If nil, nothing is recorded.
	Journal audit.Journal
	// Logger receives structured log output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Execute runs cmd and waits for its result. Exactly one external process is
// started per call. Cancelling ctx abandons the wait; the process itself runs
// to completion on the host.
func (e *Executor) Execute(ctx context.Context, cmd command.Command) Result {
	log := e.logger().With("resource", string(cmd.Resource()), "operation", string(cmd.Operation()))
	log.Debug("executing", "command", cmd.Redacted())

	start := time.Now()
	stdout, err := e.Bridge.RunCommand(ctx, cmd.Executable(), cmd.Args())
	elapsed := time.Since(start)

	var res Result
	if err != nil {
		res = Failed(classify(err))
		log.Debug("command failed", "kind", res.Failure.Kind, "duration", elapsed)
	} else {
		res = Success(stdout)
		log.Debug("command succeeded", "bytes", len(stdout), "duration", elapsed)
	}

	e.record(ctx, cmd, res, elapsed)
	return res
}

// Go runs cmd asynchronously. The returned channel receives exactly one
// Result and is buffered, so an abandoned result never blocks the sender.
func (e *Executor) Go(ctx context.Context, cmd command.Command) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		ch <- e.Execute(ctx, cmd)
	}()
	return ch
}

func (e *Executor) record(ctx context.Context, cmd command.Command, res Result, elapsed time.Duration) {
	if e.Journal == nil {
		return
	}
	entry := audit.NewEntry(string(cmd.Resource()), string(cmd.Operation()), cmd.Redacted())
	entry.Succeeded = res.OK()
	if !res.OK() {
		entry.Error = errors.Stderr(res.Failure)
	}
	entry.Duration = elapsed
	// The journal write must not be lost because the caller stopped waiting.
	if err := e.Journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		e.logger().Warn("audit journal write failed", "error", err)
	}
}

// classify keeps gateway errors as they are and files anything else (context
// cancellation, transport errors) under BridgeUnavailable.
func classify(err error) *errors.E {
	var e *errors.E
	if stderrors.As(err, &e) {
		return e
	}
	return errors.Wrap(errors.BridgeUnavailable, "execution host did not return a result", err)
}
