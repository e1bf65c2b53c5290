// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package hostexec runs the external client on the privileged side of the
// execution bridge. It is the only package in the module that creates
// processes; front-end code reaches it exclusively through a bridge.
package hostexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	apperrors "polarisdesk/cli/internal/errors"
)

// Runner starts one external process per call.
type Runner struct {
	// Logger receives structured log output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run executes the program with the given argument vector and returns its
// standard output. No shell is involved and stdin is not connected.
//
// Once started the process is not tied to ctx: it runs to completion even if
// the caller stops waiting. ctx is only consulted before spawning.
//
// Failures are *errors.E of kind SpawnFailed (the program could not be
// started) or NonZeroExit (the program ran and failed). In both cases the
// message is the captured stderr, or a synthetic message when stderr was empty.
func (r *Runner) Run(ctx context.Context, executable string, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cmd := exec.Command(executable, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		r.logger().Debug("spawn failed", "executable", executable, "error", err)
		return "", apperrors.Wrap(apperrors.SpawnFailed, fmt.Sprintf("cannot run %s", executable), err)
	}

	err := cmd.Wait()
	if err == nil {
		return stdout.String(), nil
	}

	msg := strings.TrimSpace(stderr.String())
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg == "" {
			msg = fmt.Sprintf("%s exited with status %d", executable, exitErr.ExitCode())
		}
		return "", apperrors.New(apperrors.NonZeroExit, msg)
	}

	// Stream copy failures surface from Wait without an exit status.
	if msg == "" {
		msg = err.Error()
	}
	return "", apperrors.New(apperrors.NonZeroExit, msg)
}
