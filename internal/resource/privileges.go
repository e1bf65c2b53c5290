// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package resource

import (
	"context"
	"fmt"
	"strings"

	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/errors"
	"polarisdesk/cli/internal/response"
)

// Scope is the securable a privilege applies to.
type Scope string

const (
	CatalogScope   Scope = "catalog"
	NamespaceScope Scope = "namespace"
	TableScope     Scope = "table"
	ViewScope      Scope = "view"
)

// PrivilegeSpec names one privilege on one securable for a catalog-role.
type PrivilegeSpec struct {
	Scope       Scope
	Privilege   string
	Catalog     string
	CatalogRole string
	// Namespace levels, outermost first. Rendered dot-separated.
	Namespace []string
	// Table or view name; used by TableScope and ViewScope.
	Table string
}

// Validate checks that the securable is fully named for its scope.
func (s PrivilegeSpec) Validate() error {
	if s.Privilege == "" || s.Catalog == "" || s.CatalogRole == "" {
		return errors.New(errors.InvalidArgument, "privilege, catalog and catalog-role are required")
	}
	switch s.Scope {
	case CatalogScope:
	case NamespaceScope:
		if len(s.Namespace) == 0 {
			return errors.New(errors.InvalidArgument, "namespace privileges need a namespace")
		}
	case TableScope, ViewScope:
		if len(s.Namespace) == 0 || s.Table == "" {
			return errors.New(errors.InvalidArgument, fmt.Sprintf("%s privileges need a namespace and a %s", s.Scope, s.Scope))
		}
	default:
		return errors.New(errors.InvalidArgument, fmt.Sprintf("unknown privilege scope %q", s.Scope))
	}
	return nil
}

func (s PrivilegeSpec) flags() []command.Flag {
	flags := []command.Flag{
		{Key: "catalog", Value: s.Catalog},
		{Key: "catalog-role", Value: s.CatalogRole},
	}
	if s.Scope != CatalogScope {
		flags = append(flags, command.Flag{Key: "namespace", Value: strings.Join(s.Namespace, ".")})
	}
	switch s.Scope {
	case TableScope:
		flags = append(flags, command.Flag{Key: "table", Value: s.Table})
	case ViewScope:
		flags = append(flags, command.Flag{Key: "view", Value: s.Table})
	}
	return flags
}

type Privileges struct{ client *Client }

// List returns the privileges held by catalogRole in catalog.
func (p *Privileges) List(ctx context.Context, conn config.Connection, catalog, catalogRole string) ([]response.GrantRecord, error) {
	records, err := p.client.List(ctx, conn, "",
		command.Flag{Key: "catalog", Value: catalog},
		command.Flag{Key: "catalog-role", Value: catalogRole},
	)
	if err != nil {
		return nil, err
	}
	return response.Decode[response.GrantRecord](records)
}

func (p *Privileges) Grant(ctx context.Context, conn config.Connection, spec PrivilegeSpec) error {
	return p.change(ctx, conn, command.Grant, spec)
}

func (p *Privileges) Revoke(ctx context.Context, conn config.Connection, spec PrivilegeSpec) error {
	return p.change(ctx, conn, command.Revoke, spec)
}

// change runs "privileges <scope> grant|revoke <PRIVILEGE> --catalog C --catalog-role R ...".
func (p *Privileges) change(ctx context.Context, conn config.Connection, verb command.Operation, spec PrivilegeSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	op := command.Operation(string(spec.Scope) + " " + string(verb))
	_, err := p.client.Do(ctx, conn, op, []string{spec.Privilege}, spec.flags())
	return err
}
