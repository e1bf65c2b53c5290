// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package console owns the displayed state and drives the refetch protocol:
// a mutation is awaited to completion, and only when it succeeds are the
// parts that depend on it rebuilt from the external client.
package console

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/resource"
	"polarisdesk/cli/internal/response"
	"polarisdesk/cli/internal/snapshot"
)

// Console holds the current State.
type Console struct {
	set  *resource.Set
	sync *snapshot.Orchestrator
	// Logger receives structured log output. If nil, slog.Default() is used.
	Logger *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates a console with an empty state.
func New(set *resource.Set, orchestrator *snapshot.Orchestrator) *Console {
	if orchestrator == nil {
		orchestrator = &snapshot.Orchestrator{}
	}
	return &Console{set: set, sync: orchestrator, state: State{}.clone()}
}

func (c *Console) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// State returns the current state.
func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

type update func(*State)

// Refresh rebuilds the named parts, or every part when none is named. Parts
// are rebuilt one after another. A part that fails keeps its previous value
// and its error is recorded in State.Errors and returned joined with the
// other failures.
func (c *Console) Refresh(ctx context.Context, conn config.Connection, parts ...Part) error {
	if len(parts) == 0 {
		parts = AllParts
	}

	updates := make([]update, 0, len(parts))
	var errs []error
	for _, part := range parts {
		apply, err := c.rebuild(ctx, conn, part)
		if err != nil {
			c.logger().Warn("refresh failed", "part", part, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", part, err))
			updates = append(updates, func(s *State) { s.Errors[part] = err })
			continue
		}
		updates = append(updates, func(s *State) {
			apply(s)
			delete(s.Errors, part)
		})
	}

	c.mu.Lock()
	next := c.state.clone()
	for _, u := range updates {
		u(&next)
	}
	next.RefreshedAt = time.Now()
	c.state = next
	c.mu.Unlock()

	return stderrors.Join(errs...)
}

func (c *Console) rebuild(ctx context.Context, conn config.Connection, part Part) (update, error) {
	switch part {
	case PartCatalogs:
		catalogs, err := c.set.Catalogs.List(ctx, conn)
		if err != nil {
			return nil, err
		}
		return func(s *State) { s.Catalogs = catalogs }, nil
	case PartPrincipals:
		principals, err := c.set.Principals.List(ctx, conn)
		if err != nil {
			return nil, err
		}
		return func(s *State) { s.Principals = principals }, nil
	case PartPrincipalRoles:
		roles, err := c.set.PrincipalRoles.List(ctx, conn, "")
		if err != nil {
			return nil, err
		}
		return func(s *State) { s.PrincipalRoles = roles }, nil
	case PartCatalogRoleAssignments:
		snap, err := c.sync.Rebuild(ctx, c.catalogRolesView(conn))
		if err != nil {
			return nil, err
		}
		return func(s *State) { s.CatalogRoleAssignments = snap }, nil
	case PartPrincipalRoleAssignments:
		snap, err := c.sync.Rebuild(ctx, c.principalRolesView(conn))
		if err != nil {
			return nil, err
		}
		return func(s *State) { s.PrincipalRoleAssignments = snap }, nil
	default:
		return nil, fmt.Errorf("unknown part %q", part)
	}
}

// CatalogGrants builds the catalog-role → privileges view of one catalog and
// stores it in State.Grants. On failure the previous view is kept.
func (c *Console) CatalogGrants(ctx context.Context, conn config.Connection, catalog string) (snapshot.Snapshot, error) {
	snap, err := c.sync.Rebuild(ctx, c.grantsView(conn, catalog))
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	c.mu.Lock()
	next := c.state.clone()
	next.Grants[catalog] = snap
	c.state = next
	c.mu.Unlock()
	return snap, nil
}

// View builders. Each parent list is fetched fresh by the orchestrator.

func (c *Console) catalogRolesView(conn config.Connection) snapshot.View {
	return snapshot.View{
		Name: "catalog-roles",
		Parents: func(ctx context.Context) ([]string, error) {
			catalogs, err := c.set.Catalogs.List(ctx, conn)
			if err != nil {
				return nil, err
			}
			names := make([]string, len(catalogs))
			for i, cat := range catalogs {
				names[i] = cat.Name
			}
			return names, nil
		},
		Children: func(ctx context.Context, catalog string) ([]response.Record, error) {
			roles, err := c.set.CatalogRoles.List(ctx, conn, catalog)
			return roleRecords(roles), err
		},
	}
}

func (c *Console) principalRolesView(conn config.Connection) snapshot.View {
	return snapshot.View{
		Name: "principal-roles",
		Parents: func(ctx context.Context) ([]string, error) {
			principals, err := c.set.Principals.List(ctx, conn)
			if err != nil {
				return nil, err
			}
			names := make([]string, len(principals))
			for i, p := range principals {
				names[i] = p.Name
			}
			return names, nil
		},
		Children: func(ctx context.Context, principal string) ([]response.Record, error) {
			roles, err := c.set.PrincipalRoles.List(ctx, conn, principal)
			return roleRecords(roles), err
		},
	}
}

func (c *Console) grantsView(conn config.Connection, catalog string) snapshot.View {
	return snapshot.View{
		Name: "privileges",
		Parents: func(ctx context.Context) ([]string, error) {
			roles, err := c.set.CatalogRoles.List(ctx, conn, catalog)
			if err != nil {
				return nil, err
			}
			names := make([]string, len(roles))
			for i, r := range roles {
				names[i] = r.Name
			}
			return names, nil
		},
		Children: func(ctx context.Context, role string) ([]response.Record, error) {
			grants, err := c.set.Privileges.List(ctx, conn, catalog, role)
			if err != nil {
				return nil, err
			}
			out := make([]response.Record, len(grants))
			for i, g := range grants {
				out[i] = grantRecord(g)
			}
			return out, nil
		},
	}
}

func roleRecords(roles []response.RoleRecord) []response.Record {
	if roles == nil {
		return nil
	}
	out := make([]response.Record, len(roles))
	for i, r := range roles {
		out[i] = response.Record{"name": r.Name, "federated": r.Federated}
	}
	return out
}

// grantRecord renders a grant under "name" so snapshot views can list it
// like any other child.
func grantRecord(g response.GrantRecord) response.Record {
	rec := response.Record{"name": g.Privilege, "privilege": g.Privilege, "type": g.Type}
	if len(g.Namespace) > 0 {
		ns := make([]any, len(g.Namespace))
		for i, n := range g.Namespace {
			ns[i] = n
		}
		rec["namespace"] = ns
	}
	if g.TableName != "" {
		rec["tableName"] = g.TableName
	}
	if g.ViewName != "" {
		rec["viewName"] = g.ViewName
	}
	return rec
}
