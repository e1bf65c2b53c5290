// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package progress

import (
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// Braille spinner frames, similar to the docker CLI.
var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Renderer shows sync progress in a pterm area that is redrawn on every
// event and on a spinner tick. It is an Observer.
type Renderer struct {
	state *State
	pad   PadLines

	mu           sync.Mutex
	area         *pterm.AreaPrinter
	frameIdx     int
	lastRendered string
	stop         chan struct{}
	wg           sync.WaitGroup
}

// NewRenderer creates a renderer. Call Start before the sync and Stop after.
func NewRenderer() *Renderer {
	return &Renderer{state: NewState()}
}

// State exposes the accumulated progress.
func (r *Renderer) State() *State { return r.state }

// Start hides the cursor and opens the live area.
func (r *Renderer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.area != nil {
		return
	}
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		return
	}
	cursor.Hide()
	r.area = area
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go r.tick(r.stop)
}

func (r *Renderer) tick(stop <-chan struct{}) {
	defer r.wg.Done()
	t := time.NewTicker(120 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			r.mu.Lock()
			r.frameIdx++
			r.redrawLocked()
			r.mu.Unlock()
		case <-stop:
			return
		}
	}
}

// Observe records the event and redraws.
func (r *Renderer) Observe(ev Event) {
	r.state.Observe(ev)
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.Type == EventViewStarted {
		r.pad.Reset()
	}
	r.redrawLocked()
}

func (r *Renderer) redrawLocked() {
	if r.area == nil {
		return
	}
	lines := r.pad.Apply(r.state.Lines(frames[r.frameIdx%len(frames)]))
	text := strings.Join(lines, "\n")
	if text == r.lastRendered {
		return
	}
	r.lastRendered = text
	r.area.Update(text)
}

// Stop removes the live area and shows the cursor again. Failed parents
// are printed as warnings so they stay visible after the area is cleared.
func (r *Renderer) Stop() {
	r.mu.Lock()
	if r.area == nil {
		r.mu.Unlock()
		return
	}
	close(r.stop)
	r.mu.Unlock()
	r.wg.Wait()

	r.mu.Lock()
	_ = r.area.Stop()
	r.area = nil
	r.lastRendered = ""
	r.mu.Unlock()
	cursor.Show()

	r.state.mu.Lock()
	failed := make([]string, 0, len(r.state.Failed))
	for _, name := range r.state.Order {
		if reason, ok := r.state.Failed[name]; ok {
			failed = append(failed, name+": "+firstLine(reason))
		}
	}
	view := r.state.View
	r.state.mu.Unlock()

	for _, f := range failed {
		pterm.Warning.Printfln("could not list %s of %s", view, f)
	}
}
