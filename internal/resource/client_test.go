// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package resource

import (
	"context"
	"slices"
	"strings"
	"testing"

	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/errors"
	"polarisdesk/cli/internal/executor"
)

// recorder records every command and answers with a canned result.
type recorder struct {
	calls  [][]string
	result executor.Result
}

func (r *recorder) Execute(_ context.Context, cmd command.Command) executor.Result {
	r.calls = append(r.calls, cmd.Args()[8:])
	return r.result
}

func (r *recorder) last() string {
	if len(r.calls) == 0 {
		return ""
	}
	return strings.Join(r.calls[len(r.calls)-1], " ")
}

var conn = config.Connection{Host: "localhost", Port: "8181", ClientID: "root", ClientSecret: "s", ExecutablePath: "./polaris"}

func TestCommandShapes(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(s *Set) error
		want string
	}{
		{"catalogs list", func(s *Set) error { _, err := s.Catalogs.List(ctx, conn); return err }, "catalogs list"},
		{"catalogs get", func(s *Set) error { _, err := s.Catalogs.Get(ctx, conn, "c1"); return err }, "catalogs get c1"},
		{"catalogs create", func(s *Set) error {
			return s.Catalogs.Create(ctx, conn, CatalogSpec{Name: "c1", Type: "T1", StorageType: "S1", DefaultBaseLocation: "L1"})
		}, "catalogs create c1 --type T1 --storage-type S1 --default-base-location L1"},
		{"catalogs create with allowed locations", func(s *Set) error {
			return s.Catalogs.Create(ctx, conn, CatalogSpec{Name: "c1", Type: "INTERNAL", StorageType: "S3", DefaultBaseLocation: "s3://b/c1", AllowedLocations: []string{"s3://b/x"}})
		}, "catalogs create c1 --type INTERNAL --storage-type S3 --default-base-location s3://b/c1 --allowed-location s3://b/x"},
		{"catalogs delete", func(s *Set) error { return s.Catalogs.Delete(ctx, conn, "c1") }, "catalogs delete c1"},
		{"principals list", func(s *Set) error { _, err := s.Principals.List(ctx, conn); return err }, "principals list"},
		{"principals create", func(s *Set) error { _, err := s.Principals.Create(ctx, conn, "svc", "SERVICE"); return err }, "principals create svc --type SERVICE"},
		{"principals create default type", func(s *Set) error { _, err := s.Principals.Create(ctx, conn, "svc", ""); return err }, "principals create svc --type SERVICE"},
		{"principals delete", func(s *Set) error { return s.Principals.Delete(ctx, conn, "svc") }, "principals delete svc"},
		{"principals rotate", func(s *Set) error { _, err := s.Principals.RotateCredentials(ctx, conn, "svc"); return err }, "principals rotate-credentials svc"},
		{"principal-roles list", func(s *Set) error { _, err := s.PrincipalRoles.List(ctx, conn, ""); return err }, "principal-roles list"},
		{"principal-roles list by principal", func(s *Set) error { _, err := s.PrincipalRoles.List(ctx, conn, "svc"); return err }, "principal-roles list --principal svc"},
		{"principal-roles create", func(s *Set) error { return s.PrincipalRoles.Create(ctx, conn, "admin") }, "principal-roles create admin"},
		{"principal-roles delete", func(s *Set) error { return s.PrincipalRoles.Delete(ctx, conn, "admin") }, "principal-roles delete admin"},
		{"principal-roles grant", func(s *Set) error { return s.PrincipalRoles.Grant(ctx, conn, "admin", "svc") }, "principal-roles grant admin --principal svc"},
		{"principal-roles revoke", func(s *Set) error { return s.PrincipalRoles.Revoke(ctx, conn, "admin", "svc") }, "principal-roles revoke admin --principal svc"},
		{"catalog-roles list", func(s *Set) error { _, err := s.CatalogRoles.List(ctx, conn, "c1"); return err }, "catalog-roles list c1"},
		{"catalog-roles list all", func(s *Set) error { _, err := s.CatalogRoles.List(ctx, conn, ""); return err }, "catalog-roles list"},
		{"catalog-roles get", func(s *Set) error { _, err := s.CatalogRoles.Get(ctx, conn, "reader", "c1"); return err }, "catalog-roles get reader --catalog c1"},
		{"catalog-roles create", func(s *Set) error { return s.CatalogRoles.Create(ctx, conn, "reader", "c1") }, "catalog-roles create reader --catalog c1"},
		{"catalog-roles delete", func(s *Set) error { return s.CatalogRoles.Delete(ctx, conn, "reader", "c1") }, "catalog-roles delete reader --catalog c1"},
		{"catalog-roles delete without catalog", func(s *Set) error { return s.CatalogRoles.Delete(ctx, conn, "reader", "") }, "catalog-roles delete reader"},
		{"catalog-roles grant", func(s *Set) error { return s.CatalogRoles.Grant(ctx, conn, "reader", "c1", "analysts") }, "catalog-roles grant reader --catalog c1 --principal-role analysts"},
		{"catalog-roles revoke", func(s *Set) error { return s.CatalogRoles.Revoke(ctx, conn, "reader", "c1", "analysts") }, "catalog-roles revoke reader --catalog c1 --principal-role analysts"},
		{"privileges list", func(s *Set) error { _, err := s.Privileges.List(ctx, conn, "c1", "reader"); return err }, "privileges list --catalog c1 --catalog-role reader"},
		{"privileges catalog grant", func(s *Set) error {
			return s.Privileges.Grant(ctx, conn, PrivilegeSpec{Scope: CatalogScope, Privilege: "CATALOG_MANAGE_CONTENT", Catalog: "c1", CatalogRole: "reader"})
		}, "privileges catalog grant CATALOG_MANAGE_CONTENT --catalog c1 --catalog-role reader"},
		{"privileges table revoke", func(s *Set) error {
			return s.Privileges.Revoke(ctx, conn, PrivilegeSpec{Scope: TableScope, Privilege: "TABLE_READ_DATA", Catalog: "c1", CatalogRole: "reader", Namespace: []string{"db", "sales"}, Table: "orders"})
		}, "privileges table revoke TABLE_READ_DATA --catalog c1 --catalog-role reader --namespace db.sales --table orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{result: executor.Success(`{"name":"x","privilege":"P","clientId":"id"}`)}
			if err := tt.call(NewSet(rec)); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if got := rec.last(); got != tt.want {
				t.Errorf("command = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectionFlagsComeFirst(t *testing.T) {
	var got []string
	exec := executorFunc(func(_ context.Context, cmd command.Command) executor.Result {
		got = cmd.Args()
		return executor.Success("")
	})
	if _, err := NewSet(exec).Catalogs.List(context.Background(), conn); err != nil {
		t.Fatal(err)
	}
	want := []string{"--host", "localhost", "--port", "8181", "--client-id", "root", "--client-secret", "s", "catalogs", "list"}
	if !slices.Equal(got, want) {
		t.Errorf("args = %q, want %q", got, want)
	}
}

type executorFunc func(context.Context, command.Command) executor.Result

func (f executorFunc) Execute(ctx context.Context, cmd command.Command) executor.Result { return f(ctx, cmd) }

func TestEmptyListIsNotAnError(t *testing.T) {
	rec := &recorder{result: executor.Success("")}
	catalogs, err := NewSet(rec).Catalogs.List(context.Background(), conn)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if catalogs == nil || len(catalogs) != 0 {
		t.Errorf("List() = %#v, want empty slice", catalogs)
	}
}

func TestFailurePassesThroughUnchanged(t *testing.T) {
	failure := errors.New(errors.NonZeroExit, "Catalog c1 already exists")
	rec := &recorder{result: executor.Failed(failure)}
	set := NewSet(rec)

	err := set.Catalogs.Create(context.Background(), conn, CatalogSpec{Name: "c1"})
	if err != failure {
		t.Errorf("Create() error = %v, want the executor's failure", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retries)", len(rec.calls))
	}
}

func TestUnsupportedOperationNeverExecutes(t *testing.T) {
	rec := &recorder{result: executor.Success("")}
	set := NewSet(rec)
	ctx := context.Background()

	checks := []struct {
		name string
		run  func() error
	}{
		{"catalog grant", func() error { return set.Generic(CatalogKind).Grant(ctx, conn, "c1") }},
		{"principal revoke", func() error { return set.Generic(PrincipalKind).Revoke(ctx, conn, "svc") }},
		{"privilege create", func() error { _, err := set.Generic(PrivilegeKind).Create(ctx, conn, "P"); return err }},
		{"empty operation", func() error { _, err := set.Generic(CatalogKind).Do(ctx, conn, "", nil, nil); return err }},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if err := c.run(); !errors.Is(err, errors.Unsupported) {
				t.Errorf("error = %v, want Unsupported", err)
			}
		})
	}
	if len(rec.calls) != 0 {
		t.Errorf("unsupported operations executed %d commands", len(rec.calls))
	}
}

func TestInvalidPrivilegeSpecNeverExecutes(t *testing.T) {
	rec := &recorder{result: executor.Success("")}
	set := NewSet(rec)
	specs := []PrivilegeSpec{
		{Scope: NamespaceScope, Privilege: "NAMESPACE_FULL_METADATA", Catalog: "c1", CatalogRole: "r"},
		{Scope: TableScope, Privilege: "TABLE_READ_DATA", Catalog: "c1", CatalogRole: "r", Namespace: []string{"db"}},
		{Scope: "schema", Privilege: "X", Catalog: "c1", CatalogRole: "r"},
		{Scope: CatalogScope, Catalog: "c1", CatalogRole: "r"},
	}
	for _, spec := range specs {
		if err := set.Privileges.Grant(context.Background(), conn, spec); !errors.Is(err, errors.InvalidArgument) {
			t.Errorf("Grant(%+v) error = %v, want InvalidArgument", spec, err)
		}
	}
	if len(rec.calls) != 0 {
		t.Errorf("invalid specs executed %d commands", len(rec.calls))
	}
}

func TestPrincipalCreateReturnsCredentials(t *testing.T) {
	rec := &recorder{result: executor.Success(`{"clientId": "abc", "clientSecret": "xyz"}` + "\n")}
	creds, err := NewSet(rec).Principals.Create(context.Background(), conn, "svc", "")
	if err != nil {
		t.Fatal(err)
	}
	if creds.ClientID != "abc" || creds.ClientSecret != "xyz" {
		t.Errorf("credentials = %+v", creds)
	}
}

func TestGetWithEmptyOutputFails(t *testing.T) {
	rec := &recorder{result: executor.Success("")}
	if _, err := NewSet(rec).Catalogs.Get(context.Background(), conn, "c1"); !errors.Is(err, errors.ParseFailed) {
		t.Errorf("Get() error = %v, want ParseFailed", err)
	}
}
