// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package snapshot rebuilds parent → children mappings with the N+1 fan-out
// the external client requires: one call to list the parents, then one call
// per parent to list its children.
package snapshot

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"polarisdesk/cli/internal/errors"
	"polarisdesk/cli/internal/progress"
	"polarisdesk/cli/internal/response"
)

// View names a mapping and the two list operations that produce it.
type View struct {
	Name     string
	Parents  func(ctx context.Context) ([]string, error)
	Children func(ctx context.Context, parent string) ([]response.Record, error)
}

// Entry is one parent and its children. Err is set, and Children is nil,
// when the children could not be listed.
type Entry struct {
	Parent   string
	Children []response.Record
	Err      error
}

// Snapshot is an immutable mapping in parent-list order. It is rebuilt
// wholesale, never patched.
type Snapshot struct {
	View    string
	Entries []Entry
}

// Parents returns every parent name in order, including failed ones.
func (s Snapshot) Parents() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Parent
	}
	return out
}

// Names returns the child names of parent, or nil when parent is unknown or
// its children could not be listed.
func (s Snapshot) Names(parent string) []string {
	for _, e := range s.Entries {
		if e.Parent == parent && e.Err == nil {
			return response.Names(e.Children)
		}
	}
	return nil
}

// Mapping returns parent → child names for every parent that succeeded.
// Failed parents are omitted.
func (s Snapshot) Mapping() map[string][]string {
	m := make(map[string][]string, len(s.Entries))
	for _, e := range s.Entries {
		if e.Err == nil {
			m[e.Parent] = response.Names(e.Children)
		}
	}
	return m
}

// Failed returns the entries whose children could not be listed.
func (s Snapshot) Failed() []Entry {
	var out []Entry
	for _, e := range s.Entries {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

// Orchestrator runs the fan-out.
type Orchestrator struct {
	// Parallelism bounds concurrent child-list calls. Zero or one runs them
	// one at a time, each awaited before the next is issued.
	Parallelism int
	// Observer receives progress events. May be nil.
	Observer progress.Observer
	// Logger receives structured log output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *Orchestrator) emit(ev progress.Event) {
	if o.Observer != nil {
		o.Observer.Observe(ev)
	}
}

// Rebuild lists the parents, then the children of each parent, and
// assembles the entries in parent-list order regardless of completion
// order. A failed parent list aborts and is returned. A failed child list
// is recorded in that parent's entry and the other parents still complete.
func (o *Orchestrator) Rebuild(ctx context.Context, v View) (Snapshot, error) {
	log := o.logger().With("view", v.Name)

	parents, err := v.Parents(ctx)
	if err != nil {
		log.Warn("parent list failed", "error", err)
		o.emit(progress.Event{Type: progress.EventViewFailed, View: v.Name, Reason: errors.Stderr(err)})
		return Snapshot{}, err
	}
	o.emit(progress.Event{Type: progress.EventViewStarted, View: v.Name, Parents: parents})

	entries := make([]Entry, len(parents))
	fetch := func(i int) {
		parent := parents[i]
		o.emit(progress.Event{Type: progress.EventParentStarted, View: v.Name, Parent: parent})
		children, err := v.Children(ctx, parent)
		if err != nil {
			log.Warn("child list failed", "parent", parent, "error", err)
			o.emit(progress.Event{Type: progress.EventParentFailed, View: v.Name, Parent: parent, Reason: errors.Stderr(err)})
			entries[i] = Entry{Parent: parent, Err: err}
			return
		}
		o.emit(progress.Event{Type: progress.EventParentDone, View: v.Name, Parent: parent, Children: len(children)})
		entries[i] = Entry{Parent: parent, Children: children}
	}

	if o.Parallelism <= 1 {
		for i := range parents {
			fetch(i)
		}
	} else {
		// Child failures are isolated per entry, so the group never
		// cancels its siblings.
		var g errgroup.Group
		g.SetLimit(o.Parallelism)
		for i := range parents {
			g.Go(func() error {
				fetch(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	o.emit(progress.Event{Type: progress.EventViewDone, View: v.Name})
	log.Debug("view rebuilt", "parents", len(parents))
	return Snapshot{View: v.Name, Entries: entries}, nil
}
