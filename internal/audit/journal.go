// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package audit records every command the gateway executes. The journal is
// write-mostly and is never read back to build console state.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one executed command.
type Entry struct {
	ID        string
	Resource  string
	Operation string
	// Command is the redacted invocation; the client secret never reaches the journal.
	Command   string
	Succeeded bool
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// NewEntry stamps a fresh entry with an ID and the current time.
func NewEntry(resource, operation, command string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Resource:  resource,
		Operation: operation,
		Command:   command,
		CreatedAt: time.Now().UTC(),
	}
}

// Journal persists entries.
type Journal interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards every entry. It is used when no audit DSN is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
