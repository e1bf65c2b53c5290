// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package console

import (
	"context"
	"slices"
	"strings"
	"testing"

	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/errors"
	"polarisdesk/cli/internal/resource"
	"polarisdesk/cli/internal/resource/resourcetest"
	"polarisdesk/cli/internal/snapshot"
)

var conn = config.Connection{Host: "localhost", Port: "8181", ClientID: "root", ClientSecret: "s", ExecutablePath: "./polaris"}

func newConsole(t *testing.T, svc *resourcetest.Service) *Console {
	t.Helper()
	return New(resource.NewSet(svc), &snapshot.Orchestrator{})
}

func seeded() *resourcetest.Service {
	svc := resourcetest.New()
	svc.AddCatalog("A", "reader")
	svc.AddCatalog("B", "writer", "admin")
	svc.AddPrincipal("svc1", "analysts")
	svc.AddPrincipal("svc2")
	return svc
}

func countPrefix(calls []string, prefix string) int {
	n := 0
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func TestNewStartsEmpty(t *testing.T) {
	c := newConsole(t, seeded())
	s := c.State()
	if len(s.Catalogs) != 0 || len(s.CatalogRoleAssignments.Entries) != 0 || !s.RefreshedAt.IsZero() {
		t.Errorf("initial state = %+v, want empty", s)
	}
}

func TestRefreshAll(t *testing.T) {
	c := newConsole(t, seeded())
	if err := c.Refresh(context.Background(), conn); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	s := c.State()
	if got := s.CatalogNames(); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("catalogs = %q", got)
	}
	if got := s.PrincipalNames(); !slices.Equal(got, []string{"svc1", "svc2"}) {
		t.Errorf("principals = %q", got)
	}
	if got := s.CatalogRoleAssignments.Names("B"); !slices.Equal(got, []string{"writer", "admin"}) {
		t.Errorf("catalog B roles = %q", got)
	}
	if got := s.PrincipalRoleAssignments.Names("svc1"); !slices.Equal(got, []string{"analysts"}) {
		t.Errorf("svc1 roles = %q", got)
	}
	if s.RefreshedAt.IsZero() {
		t.Error("RefreshedAt not set")
	}
}

func TestRefreshFailedPartKeepsPreviousValue(t *testing.T) {
	svc := seeded()
	c := newConsole(t, svc)
	ctx := context.Background()
	if err := c.Refresh(ctx, conn); err != nil {
		t.Fatal(err)
	}

	svc.AddCatalog("C")
	svc.FailOn("principals list", "connection refused")
	err := c.Refresh(ctx, conn, PartCatalogs, PartPrincipals)
	if !errors.Is(err, errors.NonZeroExit) {
		t.Fatalf("Refresh() error = %v, want the principals failure", err)
	}

	s := c.State()
	if got := s.CatalogNames(); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("catalogs = %q, want refreshed list", got)
	}
	if got := s.PrincipalNames(); !slices.Equal(got, []string{"svc1", "svc2"}) {
		t.Errorf("principals = %q, want previous list", got)
	}
	if !slices.Equal(s.FailedParts(), []Part{PartPrincipals}) {
		t.Errorf("FailedParts() = %v", s.FailedParts())
	}
}

func TestRefreshIsolatesChildFailures(t *testing.T) {
	svc := seeded()
	svc.FailOn("catalog-roles list B", "Catalog B not found")
	c := newConsole(t, svc)

	if err := c.Refresh(context.Background(), conn, PartCatalogRoleAssignments); err != nil {
		t.Fatalf("Refresh() error = %v; child failures must not fail the part", err)
	}
	snap := c.State().CatalogRoleAssignments
	if got := snap.Names("A"); !slices.Equal(got, []string{"reader"}) {
		t.Errorf("A roles = %q", got)
	}
	if failed := snap.Failed(); len(failed) != 1 || failed[0].Parent != "B" {
		t.Errorf("Failed() = %+v", failed)
	}
}

func TestFailedMutationDoesNotResync(t *testing.T) {
	svc := seeded()
	c := newConsole(t, svc)
	ctx := context.Background()
	if err := c.Refresh(ctx, conn); err != nil {
		t.Fatal(err)
	}
	before := c.State()
	svc.ResetCalls()

	err := c.CreateCatalog(ctx, conn, resource.CatalogSpec{Name: "A", Type: "INTERNAL", StorageType: "FILE", DefaultBaseLocation: "file:///tmp/a"})
	if !errors.Is(err, errors.NonZeroExit) || !strings.Contains(errors.Stderr(err), "already exists") {
		t.Fatalf("CreateCatalog() error = %v, want the raw client failure", err)
	}

	calls := svc.Calls()
	if len(calls) != 1 || countPrefix(calls, "catalogs list") != 0 {
		t.Errorf("calls after failed mutation = %q, want only the create", calls)
	}
	if after := c.State(); !after.RefreshedAt.Equal(before.RefreshedAt) {
		t.Error("state was replaced after a failed mutation")
	}
}

func TestSuccessfulMutationResyncs(t *testing.T) {
	svc := seeded()
	c := newConsole(t, svc)
	ctx := context.Background()
	if err := c.Refresh(ctx, conn); err != nil {
		t.Fatal(err)
	}
	svc.ResetCalls()

	if err := c.CreateCatalog(ctx, conn, resource.CatalogSpec{Name: "C", Type: "INTERNAL", StorageType: "FILE", DefaultBaseLocation: "file:///tmp/c"}); err != nil {
		t.Fatalf("CreateCatalog() error = %v", err)
	}
	calls := svc.Calls()
	if !strings.HasPrefix(calls[0], "catalogs create C") {
		t.Errorf("first call = %q, want the mutation", calls[0])
	}
	if countPrefix(calls[1:], "catalogs list") == 0 {
		t.Errorf("no resync after create: %q", calls)
	}
	if !c.State().HasCatalog("C") {
		t.Error("new catalog missing from state after resync")
	}
	if _, ok := c.State().CatalogRoleAssignments.Mapping()["C"]; !ok {
		t.Error("new catalog missing from catalog-role assignments")
	}
}

func TestMutationsResyncTheirParts(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		mutate func(c *Console) error
		check  func(t *testing.T, s State)
	}{
		{
			name:   "grant principal role",
			mutate: func(c *Console) error { return c.GrantPrincipalRole(ctx, conn, "analysts", "svc2") },
			check: func(t *testing.T, s State) {
				if got := s.PrincipalRoleAssignments.Names("svc2"); !slices.Equal(got, []string{"analysts"}) {
					t.Errorf("svc2 roles = %q", got)
				}
			},
		},
		{
			name:   "revoke principal role",
			mutate: func(c *Console) error { return c.RevokePrincipalRole(ctx, conn, "analysts", "svc1") },
			check: func(t *testing.T, s State) {
				if got := s.PrincipalRoleAssignments.Names("svc1"); len(got) != 0 {
					t.Errorf("svc1 roles = %q", got)
				}
			},
		},
		{
			name:   "create principal role",
			mutate: func(c *Console) error { return c.CreatePrincipalRole(ctx, conn, "ops") },
			check: func(t *testing.T, s State) {
				if !slices.Contains(s.PrincipalRoleNames(), "ops") {
					t.Errorf("principal-roles = %q", s.PrincipalRoleNames())
				}
			},
		},
		{
			name:   "delete principal role",
			mutate: func(c *Console) error { return c.DeletePrincipalRole(ctx, conn, "analysts") },
			check: func(t *testing.T, s State) {
				if slices.Contains(s.PrincipalRoleNames(), "analysts") || len(s.PrincipalRoleAssignments.Names("svc1")) != 0 {
					t.Error("deleted principal-role still visible")
				}
			},
		},
		{
			name:   "create catalog role",
			mutate: func(c *Console) error { return c.CreateCatalogRole(ctx, conn, "auditor", "A") },
			check: func(t *testing.T, s State) {
				if got := s.CatalogRoleAssignments.Names("A"); !slices.Equal(got, []string{"reader", "auditor"}) {
					t.Errorf("A roles = %q", got)
				}
			},
		},
		{
			name:   "delete catalog role",
			mutate: func(c *Console) error { return c.DeleteCatalogRole(ctx, conn, "admin", "B") },
			check: func(t *testing.T, s State) {
				if got := s.CatalogRoleAssignments.Names("B"); !slices.Equal(got, []string{"writer"}) {
					t.Errorf("B roles = %q", got)
				}
			},
		},
		{
			name:   "delete catalog",
			mutate: func(c *Console) error { return c.DeleteCatalog(ctx, conn, "A") },
			check: func(t *testing.T, s State) {
				if s.HasCatalog("A") || s.CatalogRoleAssignments.Names("A") != nil {
					t.Error("deleted catalog still visible")
				}
			},
		},
		{
			name:   "delete principal",
			mutate: func(c *Console) error { return c.DeletePrincipal(ctx, conn, "svc2") },
			check: func(t *testing.T, s State) {
				if slices.Contains(s.PrincipalNames(), "svc2") {
					t.Error("deleted principal still visible")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConsole(t, seeded())
			if err := c.Refresh(ctx, conn); err != nil {
				t.Fatal(err)
			}
			if err := tt.mutate(c); err != nil {
				t.Fatalf("mutation error = %v", err)
			}
			tt.check(t, c.State())
		})
	}
}

func TestCreatePrincipalReturnsCredentials(t *testing.T) {
	c := newConsole(t, seeded())
	ctx := context.Background()

	creds, err := c.CreatePrincipal(ctx, conn, "svc3", "")
	if err != nil {
		t.Fatal(err)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		t.Errorf("credentials = %+v", creds)
	}
	if !slices.Contains(c.State().PrincipalNames(), "svc3") {
		t.Error("new principal not in state")
	}

	rotated, err := c.RotatePrincipalCredentials(ctx, conn, "svc3")
	if err != nil {
		t.Fatal(err)
	}
	if rotated.ClientSecret == creds.ClientSecret {
		t.Error("rotation returned the old secret")
	}
}

func TestPrivilegeMutationsResyncGrants(t *testing.T) {
	svc := seeded()
	c := newConsole(t, svc)
	ctx := context.Background()

	spec := resource.PrivilegeSpec{Scope: resource.CatalogScope, Privilege: "CATALOG_MANAGE_CONTENT", Catalog: "B", CatalogRole: "writer"}
	if err := c.GrantPrivilege(ctx, conn, spec); err != nil {
		t.Fatal(err)
	}
	grants := c.State().Grants["B"]
	if got := grants.Names("writer"); !slices.Equal(got, []string{"CATALOG_MANAGE_CONTENT"}) {
		t.Errorf("writer grants = %q", got)
	}
	if got := grants.Names("admin"); got == nil || len(got) != 0 {
		t.Errorf("admin grants = %#v, want empty", got)
	}

	if err := c.RevokePrivilege(ctx, conn, spec); err != nil {
		t.Fatal(err)
	}
	if got := c.State().Grants["B"].Names("writer"); len(got) != 0 {
		t.Errorf("writer grants after revoke = %q", got)
	}

	svc.ResetCalls()
	bad := spec
	bad.CatalogRole = "missing"
	if err := c.GrantPrivilege(ctx, conn, bad); err == nil {
		t.Fatal("expected failure for unknown catalog-role")
	}
	if countPrefix(svc.Calls(), "catalog-roles list") != 0 {
		t.Error("grants were resynced after a failed grant")
	}
}

func TestStateIsImmutable(t *testing.T) {
	svc := seeded()
	c := newConsole(t, svc)
	ctx := context.Background()
	if err := c.Refresh(ctx, conn); err != nil {
		t.Fatal(err)
	}
	old := c.State()
	if err := c.CreateCatalog(ctx, conn, resource.CatalogSpec{Name: "Z"}); err != nil {
		t.Fatal(err)
	}
	if old.HasCatalog("Z") {
		t.Error("a previously returned State observed a later refresh")
	}
}
