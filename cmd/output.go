// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"strings"

	"github.com/pterm/pterm"

	"polarisdesk/cli/internal/logging"
)

// column pulls one cell out of a row value.
type column[T any] struct {
	title string
	value func(T) string
}

// render prints rows as a pterm table, or as JSON lines with --output json.
func render[T any](a *app, rows []T, cols []column[T]) error {
	if a.output == "json" {
		enc := json.NewEncoder(stdout)
		for _, r := range rows {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	if len(rows) == 0 {
		pterm.Info.Println("Nothing to show")
		return nil
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	data := pterm.TableData{header}
	for _, r := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = c.value(r)
		}
		data = append(data, line)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// renderOne prints a single record as a two-column key/value box.
func renderOne[T any](a *app, title string, row T, cols []column[T]) error {
	if a.output == "json" {
		return json.NewEncoder(stdout).Encode(row)
	}
	lines := make([]string, 0, len(cols))
	for _, c := range cols {
		lines = append(lines, pterm.Bold.Sprint(c.title)+": "+c.value(row))
	}
	pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(title)).
		WithPadding(1).
		Println(strings.Join(lines, "\n"))
	return nil
}

// fail prints the friendly rendering of err and returns it so the command
// exits non-zero.
func fail(action string, err error) error {
	logging.FprintFailure(stdout, action, err)
	return errSilent{err}
}

// errSilent marks an error that has already been shown to the user.
type errSilent struct{ err error }

func (e errSilent) Error() string { return e.err.Error() }
func (e errSilent) Unwrap() error { return e.err }

func done(format string, args ...any) {
	pterm.Success.Printfln(format, args...)
}
