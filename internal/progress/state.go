// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package progress

import (
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// State tracks the fan-out progress of one view.
type State struct {
	View string
	// Active holds parents whose children are being listed.
	Active map[string]struct{}
	// Completed maps parents to the number of children found.
	Completed map[string]int
	// Failed maps parents to failure reasons.
	Failed map[string]string
	// Order preserves the parent-list order.
	Order []string
	// ViewErr is set when the parent list itself failed.
	ViewErr string
	Done    bool

	mu sync.Mutex
}

// NewState creates an empty State.
func NewState() *State {
	return &State{
		Active:    make(map[string]struct{}),
		Completed: make(map[string]int),
		Failed:    make(map[string]string),
	}
}

// Observe folds one event into the state. A new view resets it.
func (s *State) Observe(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case EventViewStarted:
		s.View = ev.View
		s.Active = make(map[string]struct{})
		s.Completed = make(map[string]int)
		s.Failed = make(map[string]string)
		s.Order = append([]string(nil), ev.Parents...)
		s.ViewErr = ""
		s.Done = false
	case EventViewFailed:
		s.View = ev.View
		s.ViewErr = ev.Reason
		s.Done = true
	case EventParentStarted:
		s.Active[ev.Parent] = struct{}{}
	case EventParentDone:
		delete(s.Active, ev.Parent)
		s.Completed[ev.Parent] = ev.Children
	case EventParentFailed:
		delete(s.Active, ev.Parent)
		s.Failed[ev.Parent] = ev.Reason
	case EventViewDone:
		s.Done = true
	}
}

// Counts returns how many parents finished, failed, and are expected.
func (s *State) Counts() (completed, failed, expected int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Completed), len(s.Failed), len(s.Order)
}

// HasFailures reports whether any parent failed.
func (s *State) HasFailures() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Failed) > 0 || s.ViewErr != ""
}

// Lines renders one line per parent in parent-list order. Parents not yet
// started are omitted. spin is the current spinner frame.
func (s *State) Lines(spin string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, 0, len(s.Order)+1)
	if s.ViewErr != "" {
		return append(lines, "✗ "+s.View+": "+s.ViewErr)
	}
	for _, name := range s.Order {
		if _, ok := s.Active[name]; ok {
			lines = append(lines, spin+" listing "+s.View+" of "+name)
			continue
		}
		if n, ok := s.Completed[name]; ok {
			lines = append(lines, "✓ "+name+" ("+plural(n, s.View)+")")
			continue
		}
		if reason, ok := s.Failed[name]; ok {
			lines = append(lines, "✗ "+name+": "+firstLine(reason))
		}
	}
	return lines
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + strings.TrimSuffix(noun, "s")
	}
	return strconv.Itoa(n) + " " + noun
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// PadLines pads every line to the widest line seen so far, so a shrinking
// line does not leave stale characters behind in the terminal area.
type PadLines struct {
	maxLen int
	mu     sync.Mutex
}

func (p *PadLines) Apply(lines []string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > p.maxLen {
			p.maxLen = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l
		if pad := p.maxLen - utf8.RuneCountInString(l); pad > 0 {
			out[i] = l + strings.Repeat(" ", pad)
		}
	}
	return out
}

// Reset forgets the widest line.
func (p *PadLines) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxLen = 0
}
