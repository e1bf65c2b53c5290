// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package hostexec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "polarisdesk/cli/internal/errors"
)

// TestHelperProcess is not a real test. It is re-executed by the tests below
// as a stand-in for the external client.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("HOSTEXEC_WANT_HELPER") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	switch args[0] {
	case "ok":
		fmt.Fprintln(os.Stdout, `{"name":"c1"}`)
		fmt.Fprintln(os.Stderr, "warning: ignored")
		os.Exit(0)
	case "reject":
		fmt.Fprintln(os.Stderr, "Catalog c1 already exists")
		os.Exit(1)
	case "silent-fail":
		os.Exit(3)
	case "echo":
		fmt.Fprint(os.Stdout, strings.Join(args[1:], "|"))
		os.Exit(0)
	}
	os.Exit(2)
}

func helperArgs(mode ...string) []string {
	return append([]string{"-test.run=TestHelperProcess", "--"}, mode...)
}

func TestRun(t *testing.T) {
	t.Setenv("HOSTEXEC_WANT_HELPER", "1")
	r := &Runner{}
	ctx := context.Background()

	t.Run("success discards stderr", func(t *testing.T) {
		out, err := r.Run(ctx, os.Args[0], helperArgs("ok"))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if out != "{\"name\":\"c1\"}\n" {
			t.Errorf("stdout = %q", out)
		}
	})

	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		_, err := r.Run(ctx, os.Args[0], helperArgs("reject"))
		if !apperrors.Is(err, apperrors.NonZeroExit) {
			t.Fatalf("expected NonZeroExit, got %v", err)
		}
		if got := apperrors.Stderr(err); got != "Catalog c1 already exists" {
			t.Errorf("stderr = %q", got)
		}
	})

	t.Run("non-zero exit without stderr gets synthetic message", func(t *testing.T) {
		_, err := r.Run(ctx, os.Args[0], helperArgs("silent-fail"))
		if !apperrors.Is(err, apperrors.NonZeroExit) {
			t.Fatalf("expected NonZeroExit, got %v", err)
		}
		if got := apperrors.Stderr(err); !strings.Contains(got, "exited with status 3") {
			t.Errorf("stderr = %q", got)
		}
	})

	t.Run("arguments are not interpreted by a shell", func(t *testing.T) {
		out, err := r.Run(ctx, os.Args[0], helperArgs("echo", "a b", "$(whoami)", "c;d"))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if out != "a b|$(whoami)|c;d" {
			t.Errorf("stdout = %q", out)
		}
	})

	t.Run("missing executable", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "polaris")
		_, err := r.Run(ctx, missing, nil)
		if !apperrors.Is(err, apperrors.SpawnFailed) {
			t.Fatalf("expected SpawnFailed, got %v", err)
		}
	})
}

func TestRunCancelledBeforeSpawn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{}
	if _, err := r.Run(ctx, "true", nil); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
