// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package resource

// Set bundles one client per resource type over a shared executor.
type Set struct {
	Catalogs       *Catalogs
	Principals     *Principals
	PrincipalRoles *PrincipalRoles
	CatalogRoles   *CatalogRoles
	Privileges     *Privileges
}

func NewSet(exec Executor) *Set {
	return &Set{
		Catalogs:       &Catalogs{client: &Client{Kind: CatalogKind, Exec: exec}},
		Principals:     &Principals{client: &Client{Kind: PrincipalKind, Exec: exec}},
		PrincipalRoles: &PrincipalRoles{client: &Client{Kind: PrincipalRoleKind, Exec: exec}},
		CatalogRoles:   &CatalogRoles{client: &Client{Kind: CatalogRoleKind, Exec: exec}},
		Privileges:     &Privileges{client: &Client{Kind: PrivilegeKind, Exec: exec}},
	}
}

// Generic returns the untyped client for kind, sharing the set's executor.
func (s *Set) Generic(kind Kind) *Client {
	return &Client{Kind: kind, Exec: s.Catalogs.client.Exec}
}
