// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package resource composes the command builder, the executor and the
// response parser into per-resource operations. Clients hold no state: every
// call takes the connection it should use and nothing is cached or retried.
package resource

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/errors"
	"polarisdesk/cli/internal/executor"
	"polarisdesk/cli/internal/response"
)

// Executor runs one command. *executor.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, cmd command.Command) executor.Result
}

// FilterPlacement says how a list filter is passed to the external client.
type FilterPlacement int

const (
	// NoFilter kinds ignore the list filter.
	NoFilter FilterPlacement = iota
	// PositionalFilter appends the filter value after "list".
	PositionalFilter
	// NamedFilter passes the filter as --FilterKey value.
	NamedFilter
)

// Kind describes one resource type of the external client.
type Kind struct {
	Resource   command.Resource
	Operations []command.Operation
	ListFilter FilterPlacement
	FilterKey  string
}

// Supports reports whether op is offered. For multi-token operations such as
// "table grant" the verb is the last token.
func (k Kind) Supports(op command.Operation) bool {
	fields := strings.Fields(string(op))
	if len(fields) == 0 {
		return false
	}
	return slices.Contains(k.Operations, command.Operation(fields[len(fields)-1]))
}

var (
	CatalogKind = Kind{
		Resource:   command.Catalogs,
		Operations: []command.Operation{command.List, command.Get, command.Create, command.Delete},
	}
	PrincipalKind = Kind{
		Resource:   command.Principals,
		Operations: []command.Operation{command.List, command.Get, command.Create, command.Delete, command.RotateCredentials},
	}
	PrincipalRoleKind = Kind{
		Resource:   command.PrincipalRoles,
		Operations: []command.Operation{command.List, command.Get, command.Create, command.Delete, command.Grant, command.Revoke},
		ListFilter: NamedFilter,
		FilterKey:  "principal",
	}
	CatalogRoleKind = Kind{
		Resource:   command.CatalogRoles,
		Operations: []command.Operation{command.List, command.Get, command.Create, command.Delete, command.Grant, command.Revoke},
		ListFilter: PositionalFilter,
	}
	PrivilegeKind = Kind{
		Resource:   command.Privileges,
		Operations: []command.Operation{command.List, command.Grant, command.Revoke},
	}
)

// Client is the generic resource client.
type Client struct {
	Kind Kind
	Exec Executor
}

// Do builds and runs one command and returns its stdout. An operation the
// kind does not offer fails with Unsupported before anything is executed.
func (c *Client) Do(ctx context.Context, conn config.Connection, op command.Operation, positional []string, named []command.Flag) (string, error) {
	if !c.Kind.Supports(op) {
		return "", errors.New(errors.Unsupported, fmt.Sprintf("%s does not support %q", c.Kind.Resource, op))
	}
	res := c.Exec.Execute(ctx, command.Build(conn, c.Kind.Resource, op, positional, named))
	if !res.OK() {
		return "", res.Failure
	}
	return res.Stdout, nil
}

// List returns every record, optionally narrowed by filter. An empty filter
// lists everything. Empty output is an empty slice.
func (c *Client) List(ctx context.Context, conn config.Connection, filter string, named ...command.Flag) ([]response.Record, error) {
	var positional []string
	if filter != "" {
		switch c.Kind.ListFilter {
		case PositionalFilter:
			positional = []string{filter}
		case NamedFilter:
			named = append([]command.Flag{{Key: c.Kind.FilterKey, Value: filter}}, named...)
		}
	}
	stdout, err := c.Do(ctx, conn, command.List, positional, named)
	if err != nil {
		return nil, err
	}
	return response.ParseLines(stdout)
}

// Get returns the single record describing name.
func (c *Client) Get(ctx context.Context, conn config.Connection, name string, named ...command.Flag) (response.Record, error) {
	stdout, err := c.Do(ctx, conn, command.Get, []string{name}, named)
	if err != nil {
		return nil, err
	}
	records, err := response.ParseLines(stdout)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ParseFailed, fmt.Sprintf("%s get %s printed nothing", c.Kind.Resource, name))
	}
	return records[0], nil
}

// Create runs "<resource> create <name> --attr value..." and returns
// whatever the client printed. Callers re-list to observe the new entity.
func (c *Client) Create(ctx context.Context, conn config.Connection, name string, attrs ...command.Flag) (string, error) {
	return c.Do(ctx, conn, command.Create, []string{name}, attrs)
}

// Delete runs "<resource> delete <name>".
func (c *Client) Delete(ctx context.Context, conn config.Connection, name string, named ...command.Flag) error {
	_, err := c.Do(ctx, conn, command.Delete, []string{name}, named)
	return err
}

// Grant runs "<resource> grant <role> --scope value...".
func (c *Client) Grant(ctx context.Context, conn config.Connection, role string, scope ...command.Flag) error {
	_, err := c.Do(ctx, conn, command.Grant, []string{role}, scope)
	return err
}

// Revoke runs "<resource> revoke <role> --scope value...".
func (c *Client) Revoke(ctx context.Context, conn config.Connection, role string, scope ...command.Flag) error {
	_, err := c.Do(ctx, conn, command.Revoke, []string{role}, scope)
	return err
}
