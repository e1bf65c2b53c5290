// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package response decodes the external client's newline-delimited JSON
// output. Parsing is all-or-nothing: one bad line fails the whole call.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"polarisdesk/cli/internal/errors"
)

// Record is one entity as printed by the external client. Numbers are kept
// as json.Number so large timestamps and versions survive untouched.
type Record map[string]any

// String returns the field as a string, or "" when it is absent or not a
// string.
func (r Record) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// Name returns the conventional identifying field.
func (r Record) Name() string { return r.String("name") }

// ParseLines decodes stdout as zero or more JSON objects, one per line.
// Blank lines are skipped. Output order matches line order.
func ParseLines(stdout string) ([]Record, error) {
	lines := strings.Split(stdout, "\n")
	records := make([]Record, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrap(errors.ParseFailed, fmt.Sprintf("line %d of client output is not a JSON object", i+1), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseLine(line string) (Record, error) {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("got %s, want object", describe(v))
	}
	return Record(obj), nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Names extracts the name of every record, in order.
func Names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name()
	}
	return out
}

// marshal re-encodes a record for typed decoding.
func (r Record) marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(r)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
