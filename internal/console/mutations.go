// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package console

import (
	"context"

	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/resource"
	"polarisdesk/cli/internal/response"
)

// mutate runs op and, only if it succeeded, rebuilds the dependent parts.
// A failed mutation is returned as-is and the state is left untouched. A
// failed resync is recorded in State.Errors; the mutation itself stays a
// success.
func (c *Console) mutate(ctx context.Context, conn config.Connection, op func() error, parts ...Part) error {
	if err := op(); err != nil {
		return err
	}
	if len(parts) == 0 {
		return nil
	}
	if err := c.Refresh(ctx, conn, parts...); err != nil {
		c.logger().Warn("resync after mutation incomplete", "error", err)
	}
	return nil
}

func (c *Console) CreateCatalog(ctx context.Context, conn config.Connection, spec resource.CatalogSpec) error {
	return c.mutate(ctx, conn, func() error {
		return c.set.Catalogs.Create(ctx, conn, spec)
	}, PartCatalogs, PartCatalogRoleAssignments)
}

func (c *Console) DeleteCatalog(ctx context.Context, conn config.Connection, name string) error {
	err := c.mutate(ctx, conn, func() error {
		return c.set.Catalogs.Delete(ctx, conn, name)
	}, PartCatalogs, PartCatalogRoleAssignments)
	if err == nil {
		c.dropGrants(name)
	}
	return err
}

// CreatePrincipal returns the credentials issued for the new principal.
func (c *Console) CreatePrincipal(ctx context.Context, conn config.Connection, name, principalType string) (response.CredentialsRecord, error) {
	var creds response.CredentialsRecord
	err := c.mutate(ctx, conn, func() error {
		var err error
		creds, err = c.set.Principals.Create(ctx, conn, name, principalType)
		return err
	}, PartPrincipals, PartPrincipalRoleAssignments)
	return creds, err
}

func (c *Console) DeletePrincipal(ctx context.Context, conn config.Connection, name string) error {
	return c.mutate(ctx, conn, func() error {
		return c.set.Principals.Delete(ctx, conn, name)
	}, PartPrincipals, PartPrincipalRoleAssignments)
}

func (c *Console) RotatePrincipalCredentials(ctx context.Context, conn config.Connection, name string) (response.CredentialsRecord, error) {
	var creds response.CredentialsRecord
	err := c.mutate(ctx, conn, func() error {
		var err error
		creds, err = c.set.Principals.RotateCredentials(ctx, conn, name)
		return err
	}, PartPrincipals)
	return creds, err
}

func (c *Console) CreatePrincipalRole(ctx context.Context, conn config.Connection, name string) error {
	return c.mutate(ctx, conn, func() error {
		return c.set.PrincipalRoles.Create(ctx, conn, name)
	}, PartPrincipalRoles)
}

func (c *Console) DeletePrincipalRole(ctx context.Context, conn config.Connection, name string) error {
	return c.mutate(ctx, conn, func() error {
		return c.set.PrincipalRoles.Delete(ctx, conn, name)
	}, PartPrincipalRoles, PartPrincipalRoleAssignments)
}

func (c *Console) GrantPrincipalRole(ctx context.Context, conn config.Connection, role, principal string) error {
	return c.mutate(ctx, conn, func() error {
		return c.set.PrincipalRoles.Grant(ctx, conn, role, principal)
	}, PartPrincipalRoleAssignments)
}

func (c *Console) RevokePrincipalRole(ctx context.Context, conn config.Connection, role, principal string) error {
	return c.mutate(ctx, conn, func() error {
		return c.set.PrincipalRoles.Revoke(ctx, conn, role, principal)
	}, PartPrincipalRoleAssignments)
}

func (c *Console) CreateCatalogRole(ctx context.Context, conn config.Connection, name, catalog string) error {
	return c.mutate(ctx, conn, func() error {
		return c.set.CatalogRoles.Create(ctx, conn, name, catalog)
	}, PartCatalogRoleAssignments)
}

func (c *Console) DeleteCatalogRole(ctx context.Context, conn config.Connection, name, catalog string) error {
	err := c.mutate(ctx, conn, func() error {
		return c.set.CatalogRoles.Delete(ctx, conn, name, catalog)
	}, PartCatalogRoleAssignments)
	if err == nil && catalog != "" {
		c.resyncGrants(ctx, conn, catalog)
	}
	return err
}

func (c *Console) GrantCatalogRole(ctx context.Context, conn config.Connection, role, catalog, principalRole string) error {
	return c.mutate(ctx, conn, func() error {
		return c.set.CatalogRoles.Grant(ctx, conn, role, catalog, principalRole)
	}, PartCatalogRoleAssignments)
}

func (c *Console) RevokeCatalogRole(ctx context.Context, conn config.Connection, role, catalog, principalRole string) error {
	return c.mutate(ctx, conn, func() error {
		return c.set.CatalogRoles.Revoke(ctx, conn, role, catalog, principalRole)
	}, PartCatalogRoleAssignments)
}

// GrantPrivilege grants and then rebuilds the grants view of spec.Catalog.
func (c *Console) GrantPrivilege(ctx context.Context, conn config.Connection, spec resource.PrivilegeSpec) error {
	if err := c.set.Privileges.Grant(ctx, conn, spec); err != nil {
		return err
	}
	c.resyncGrants(ctx, conn, spec.Catalog)
	return nil
}

func (c *Console) RevokePrivilege(ctx context.Context, conn config.Connection, spec resource.PrivilegeSpec) error {
	if err := c.set.Privileges.Revoke(ctx, conn, spec); err != nil {
		return err
	}
	c.resyncGrants(ctx, conn, spec.Catalog)
	return nil
}

func (c *Console) resyncGrants(ctx context.Context, conn config.Connection, catalog string) {
	if _, err := c.CatalogGrants(ctx, conn, catalog); err != nil {
		c.logger().Warn("resync of grants incomplete", "catalog", catalog, "error", err)
	}
}

func (c *Console) dropGrants(catalog string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.state.Grants[catalog]; !ok {
		return
	}
	next := c.state.clone()
	delete(next.Grants, catalog)
	c.state = next
}
