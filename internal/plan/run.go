// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package plan

import (
	"context"
	"fmt"

	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/resource"
	"polarisdesk/cli/internal/response"
)

// Console is the subset of *console.Console a plan drives.
type Console interface {
	CreateCatalog(ctx context.Context, conn config.Connection, spec resource.CatalogSpec) error
	DeleteCatalog(ctx context.Context, conn config.Connection, name string) error
	CreatePrincipal(ctx context.Context, conn config.Connection, name, principalType string) (response.CredentialsRecord, error)
	DeletePrincipal(ctx context.Context, conn config.Connection, name string) error
	RotatePrincipalCredentials(ctx context.Context, conn config.Connection, name string) (response.CredentialsRecord, error)
	CreatePrincipalRole(ctx context.Context, conn config.Connection, name string) error
	DeletePrincipalRole(ctx context.Context, conn config.Connection, name string) error
	GrantPrincipalRole(ctx context.Context, conn config.Connection, role, principal string) error
	RevokePrincipalRole(ctx context.Context, conn config.Connection, role, principal string) error
	CreateCatalogRole(ctx context.Context, conn config.Connection, name, catalog string) error
	DeleteCatalogRole(ctx context.Context, conn config.Connection, name, catalog string) error
	GrantCatalogRole(ctx context.Context, conn config.Connection, role, catalog, principalRole string) error
	RevokeCatalogRole(ctx context.Context, conn config.Connection, role, catalog, principalRole string) error
	GrantPrivilege(ctx context.Context, conn config.Connection, spec resource.PrivilegeSpec) error
	RevokePrivilege(ctx context.Context, conn config.Connection, spec resource.PrivilegeSpec) error
}

// Observer is told about each step as it finishes. err is nil on success.
type Observer func(index int, step Step, err error)

// StepError reports the step that stopped a run.
type StepError struct {
	// Index is 0-based.
	Index int
	Step  Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Result summarizes a run.
type Result struct {
	// Applied counts the steps that succeeded.
	Applied int
	// Credentials issued by principals create and rotate-credentials steps,
	// keyed by principal name.
	Credentials map[string]response.CredentialsRecord
}

// Run applies the steps in order. The first failing step stops the run and
// is returned as a *StepError; the steps before it stay applied.
func Run(ctx context.Context, c Console, conn config.Connection, p *Plan, observe Observer) (Result, error) {
	res := Result{Credentials: make(map[string]response.CredentialsRecord)}
	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return res, &StepError{Index: i, Step: step, Err: err}
		}
		err := apply(ctx, c, conn, step, res.Credentials)
		if observe != nil {
			observe(i, step, err)
		}
		if err != nil {
			return res, &StepError{Index: i, Step: step, Err: err}
		}
		res.Applied++
	}
	return res, nil
}

func apply(ctx context.Context, c Console, conn config.Connection, s Step, creds map[string]response.CredentialsRecord) error {
	switch s.Resource + " " + s.Action {
	case "catalogs create":
		return c.CreateCatalog(ctx, conn, s.CatalogSpec())
	case "catalogs delete":
		return c.DeleteCatalog(ctx, conn, s.Name)
	case "principals create":
		cr, err := c.CreatePrincipal(ctx, conn, s.Name, s.Type)
		if err == nil {
			creds[s.Name] = cr
		}
		return err
	case "principals delete":
		return c.DeletePrincipal(ctx, conn, s.Name)
	case "principals rotate-credentials":
		cr, err := c.RotatePrincipalCredentials(ctx, conn, s.Name)
		if err == nil {
			creds[s.Name] = cr
		}
		return err
	case "principal-roles create":
		return c.CreatePrincipalRole(ctx, conn, s.Name)
	case "principal-roles delete":
		return c.DeletePrincipalRole(ctx, conn, s.Name)
	case "principal-roles grant":
		return c.GrantPrincipalRole(ctx, conn, s.Name, s.Principal)
	case "principal-roles revoke":
		return c.RevokePrincipalRole(ctx, conn, s.Name, s.Principal)
	case "catalog-roles create":
		return c.CreateCatalogRole(ctx, conn, s.Name, s.Catalog)
	case "catalog-roles delete":
		return c.DeleteCatalogRole(ctx, conn, s.Name, s.Catalog)
	case "catalog-roles grant":
		return c.GrantCatalogRole(ctx, conn, s.Name, s.Catalog, s.PrincipalRole)
	case "catalog-roles revoke":
		return c.RevokeCatalogRole(ctx, conn, s.Name, s.Catalog, s.PrincipalRole)
	case "privileges grant":
		return c.GrantPrivilege(ctx, conn, s.PrivilegeSpec())
	case "privileges revoke":
		return c.RevokePrivilege(ctx, conn, s.PrivilegeSpec())
	}
	return fmt.Errorf("unsupported step %s %s", s.Resource, s.Action)
}
