// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package progress defines the events a sync emits while it fans out over
// parent entities, the state they accumulate into, and a terminal renderer
// that shows them as a live per-parent list.
package progress

// EventType enumerates sync event kinds.
type EventType string

const (
	// EventViewStarted is sent once the parent list is known.
	EventViewStarted EventType = "view_started"
	// EventViewFailed is sent when the parent list itself could not be fetched.
	EventViewFailed EventType = "view_failed"
	// EventParentStarted is sent before a parent's children are listed.
	EventParentStarted EventType = "parent_started"
	// EventParentDone is sent when a parent's children were listed.
	EventParentDone EventType = "parent_done"
	// EventParentFailed is sent when listing a parent's children failed.
	EventParentFailed EventType = "parent_failed"
	// EventViewDone is sent after every parent finished, successfully or not.
	EventViewDone EventType = "view_done"
)

// Event is a generic container for sync progress. Only a subset of fields
// is set depending on Type.
type Event struct {
	Type EventType
	// View is the name of the snapshot being rebuilt, e.g. "catalog-roles".
	View string
	// Parents lists the parent names, set on EventViewStarted.
	Parents []string
	Parent  string
	// Children is the number of children found, set on EventParentDone.
	Children int
	// Reason carries the failure text for the *Failed events.
	Reason string
}

// Observer receives sync events. Implementations must be safe for
// concurrent use when the sync runs in parallel.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Multi fans an event out to several observers, skipping nil ones.
func Multi(observers ...Observer) Observer {
	return ObserverFunc(func(ev Event) {
		for _, o := range observers {
			if o != nil {
				o.Observe(ev)
			}
		}
	})
}
