// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package console

import (
	"maps"
	"slices"
	"time"

	"polarisdesk/cli/internal/response"
	"polarisdesk/cli/internal/snapshot"
)

// Part is one independently refreshed slice of console state.
type Part string

const (
	PartCatalogs       Part = "catalogs"
	PartPrincipals     Part = "principals"
	PartPrincipalRoles Part = "principal-roles"
	// PartCatalogRoleAssignments maps each catalog to its catalog-roles.
	PartCatalogRoleAssignments Part = "catalog-role-assignments"
	// PartPrincipalRoleAssignments maps each principal to its principal-roles.
	PartPrincipalRoleAssignments Part = "principal-role-assignments"
)

// AllParts is the refresh order used when no part is named.
var AllParts = []Part{
	PartCatalogs,
	PartPrincipals,
	PartPrincipalRoles,
	PartCatalogRoleAssignments,
	PartPrincipalRoleAssignments,
}

// State is an immutable value. Every refresh produces a new State; nothing
// reachable from a State returned by Console.State is modified afterwards.
type State struct {
	Catalogs                 []response.CatalogRecord
	Principals               []response.PrincipalRecord
	PrincipalRoles           []response.RoleRecord
	CatalogRoleAssignments   snapshot.Snapshot
	PrincipalRoleAssignments snapshot.Snapshot
	// Grants holds the catalog-role → privileges view per catalog, for the
	// catalogs that were inspected.
	Grants map[string]snapshot.Snapshot
	// Errors holds the last refresh failure per part. A failed part keeps
	// its previous value.
	Errors      map[Part]error
	RefreshedAt time.Time
}

func (s State) clone() State {
	out := s
	out.Grants = maps.Clone(s.Grants)
	out.Errors = maps.Clone(s.Errors)
	if out.Grants == nil {
		out.Grants = make(map[string]snapshot.Snapshot)
	}
	if out.Errors == nil {
		out.Errors = make(map[Part]error)
	}
	return out
}

// CatalogNames returns the catalog names in list order.
func (s State) CatalogNames() []string {
	out := make([]string, len(s.Catalogs))
	for i, c := range s.Catalogs {
		out[i] = c.Name
	}
	return out
}

// PrincipalNames returns the principal names in list order.
func (s State) PrincipalNames() []string {
	out := make([]string, len(s.Principals))
	for i, p := range s.Principals {
		out[i] = p.Name
	}
	return out
}

// PrincipalRoleNames returns the principal-role names in list order.
func (s State) PrincipalRoleNames() []string {
	out := make([]string, len(s.PrincipalRoles))
	for i, r := range s.PrincipalRoles {
		out[i] = r.Name
	}
	return out
}

// FailedParts lists the parts whose last refresh failed, in AllParts order.
func (s State) FailedParts() []Part {
	var out []Part
	for _, p := range AllParts {
		if s.Errors[p] != nil {
			out = append(out, p)
		}
	}
	return out
}

// HasCatalog reports whether name is in the catalog list.
func (s State) HasCatalog(name string) bool {
	return slices.Contains(s.CatalogNames(), name)
}
