// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package executor

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"polarisdesk/cli/internal/audit"
	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/errors"
)

type fakeBridge struct {
	mu     sync.Mutex
	calls  [][]string
	stdout string
	err    error
	block  chan struct{}
}

func (f *fakeBridge) RunCommand(ctx context.Context, executable string, args []string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{executable}, args...))
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.stdout, f.err
}

type memJournal struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func (m *memJournal) Record(_ context.Context, e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return m.err
}

var conn = config.Connection{Host: "h", Port: "1", ClientID: "id", ClientSecret: "topsecret", ExecutablePath: "./polaris"}

func TestExecute(t *testing.T) {
	tests := []struct {
		name     string
		stdout   string
		err      error
		wantOK   bool
		wantKind errors.Kind
	}{
		{name: "success", stdout: `{"name":"c1"}` + "\n", wantOK: true},
		{name: "success with empty stdout", stdout: "", wantOK: true},
		{name: "client rejection", err: errors.New(errors.NonZeroExit, "Catalog c1 already exists"), wantKind: errors.NonZeroExit},
		{name: "spawn failure", err: errors.New(errors.SpawnFailed, "cannot run ./polaris"), wantKind: errors.SpawnFailed},
		{name: "foreign error", err: stderrors.New("socket closed"), wantKind: errors.BridgeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBridge{stdout: tt.stdout, err: tt.err}
			j := &memJournal{}
			e := &Executor{Bridge: b, Journal: j}

			cmd := command.Build(conn, command.Catalogs, command.List, nil, nil)
			res := e.Execute(context.Background(), cmd)

			if res.OK() != tt.wantOK {
				t.Fatalf("OK() = %v, want %v (failure %v)", res.OK(), tt.wantOK, res.Failure)
			}
			if tt.wantOK && res.Stdout != tt.stdout {
				t.Errorf("Stdout = %q, want %q", res.Stdout, tt.stdout)
			}
			if !tt.wantOK && res.Failure.Kind != tt.wantKind {
				t.Errorf("Failure.Kind = %v, want %v", res.Failure.Kind, tt.wantKind)
			}
			if len(b.calls) != 1 || !slices.Equal(b.calls[0], cmd.Tokens()) {
				t.Errorf("bridge calls = %q, want one call %q", b.calls, cmd.Tokens())
			}
			if len(j.entries) != 1 {
				t.Fatalf("journal entries = %d, want 1", len(j.entries))
			}
			if strings.Contains(j.entries[0].Command, "topsecret") {
				t.Error("client secret reached the journal")
			}
			if j.entries[0].Succeeded != tt.wantOK {
				t.Errorf("journal Succeeded = %v", j.entries[0].Succeeded)
			}
		})
	}
}

func TestExecuteJournalFailureDoesNotChangeResult(t *testing.T) {
	e := &Executor{
		Bridge:  &fakeBridge{stdout: "ok"},
		Journal: &memJournal{err: stderrors.New("database down")},
	}
	res := e.Execute(context.Background(), command.Build(conn, command.Principals, command.List, nil, nil))
	if !res.OK() || res.Stdout != "ok" {
		t.Errorf("Execute() = %+v, want success", res)
	}
}

func TestGoDoesNotBlockCaller(t *testing.T) {
	b := &fakeBridge{stdout: "done", block: make(chan struct{})}
	e := &Executor{Bridge: b}

	ch := e.Go(context.Background(), command.Build(conn, command.Catalogs, command.List, nil, nil))
	select {
	case <-ch:
		t.Fatal("result delivered before the command finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(b.block)
	select {
	case res := <-ch:
		if res.Stdout != "done" {
			t.Errorf("Stdout = %q", res.Stdout)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}
}

func TestCancelAbandonsResult(t *testing.T) {
	b := &fakeBridge{block: make(chan struct{})}
	e := &Executor{Bridge: b}
	ctx, cancel := context.WithCancel(context.Background())

	ch := e.Go(ctx, command.Build(conn, command.Catalogs, command.List, nil, nil))
	cancel()

	res := <-ch
	if !errors.Is(res.Err(), errors.BridgeUnavailable) || !stderrors.Is(res.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want BridgeUnavailable wrapping context.Canceled", res.Err())
	}
}

func TestConcurrentExecutionsAreIndependent(t *testing.T) {
	b := &fakeBridge{stdout: "x"}
	e := &Executor{Bridge: b}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Execute(context.Background(), command.Build(conn, command.Catalogs, command.List, nil, nil))
		}()
	}
	wg.Wait()
	if len(b.calls) != 16 {
		t.Errorf("bridge calls = %d, want 16", len(b.calls))
	}
}
