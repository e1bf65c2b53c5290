// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package resource

import (
	"context"

	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/response"
)

type PrincipalRoles struct{ client *Client }

// List returns every principal-role, or only those granted to principal
// when it is non-empty.
func (r *PrincipalRoles) List(ctx context.Context, conn config.Connection, principal string) ([]response.RoleRecord, error) {
	return listRoles(ctx, r.client, conn, principal)
}

func (r *PrincipalRoles) Get(ctx context.Context, conn config.Connection, name string) (response.RoleRecord, error) {
	return getOne[response.RoleRecord](ctx, r.client, conn, name)
}

func (r *PrincipalRoles) Create(ctx context.Context, conn config.Connection, name string) error {
	_, err := r.client.Create(ctx, conn, name)
	return err
}

func (r *PrincipalRoles) Delete(ctx context.Context, conn config.Connection, name string) error {
	return r.client.Delete(ctx, conn, name)
}

// Grant assigns role to principal.
func (r *PrincipalRoles) Grant(ctx context.Context, conn config.Connection, role, principal string) error {
	return r.client.Grant(ctx, conn, role, command.Flag{Key: "principal", Value: principal})
}

func (r *PrincipalRoles) Revoke(ctx context.Context, conn config.Connection, role, principal string) error {
	return r.client.Revoke(ctx, conn, role, command.Flag{Key: "principal", Value: principal})
}

type CatalogRoles struct{ client *Client }

// List returns the catalog-roles of catalog, or all of them when catalog is empty.
func (r *CatalogRoles) List(ctx context.Context, conn config.Connection, catalog string) ([]response.RoleRecord, error) {
	return listRoles(ctx, r.client, conn, catalog)
}

func (r *CatalogRoles) Get(ctx context.Context, conn config.Connection, name, catalog string) (response.RoleRecord, error) {
	return getOne[response.RoleRecord](ctx, r.client, conn, name, command.Flag{Key: "catalog", Value: catalog})
}

func (r *CatalogRoles) Create(ctx context.Context, conn config.Connection, name, catalog string) error {
	_, err := r.client.Create(ctx, conn, name, command.Flag{Key: "catalog", Value: catalog})
	return err
}

// Delete removes a catalog-role. The catalog flag is omitted when catalog is empty.
func (r *CatalogRoles) Delete(ctx context.Context, conn config.Connection, name, catalog string) error {
	if catalog == "" {
		return r.client.Delete(ctx, conn, name)
	}
	return r.client.Delete(ctx, conn, name, command.Flag{Key: "catalog", Value: catalog})
}

// Grant assigns the catalog-role to a principal-role.
func (r *CatalogRoles) Grant(ctx context.Context, conn config.Connection, role, catalog, principalRole string) error {
	return r.client.Grant(ctx, conn, role, catalogRoleScope(catalog, principalRole)...)
}

func (r *CatalogRoles) Revoke(ctx context.Context, conn config.Connection, role, catalog, principalRole string) error {
	return r.client.Revoke(ctx, conn, role, catalogRoleScope(catalog, principalRole)...)
}

func catalogRoleScope(catalog, principalRole string) []command.Flag {
	return []command.Flag{
		{Key: "catalog", Value: catalog},
		{Key: "principal-role", Value: principalRole},
	}
}

func listRoles(ctx context.Context, client *Client, conn config.Connection, filter string) ([]response.RoleRecord, error) {
	records, err := client.List(ctx, conn, filter)
	if err != nil {
		return nil, err
	}
	return response.Decode[response.RoleRecord](records)
}
