// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package command

import (
	"slices"
	"testing"

	"polarisdesk/cli/internal/config"
)

var testConn = config.Connection{
	Host:           "localhost",
	Port:           "8181",
	ClientID:       "root",
	ClientSecret:   "s3cr3t",
	ExecutablePath: "./polaris",
}

var prefix = []string{"--host", "localhost", "--port", "8181", "--client-id", "root", "--client-secret", "s3cr3t"}

func TestBuild(t *testing.T) {
	tests := []struct {
		name       string
		resource   Resource
		op         Operation
		positional []string
		named      []Flag
		want       []string
	}{
		{
			name:     "catalogs list",
			resource: Catalogs,
			op:       List,
			want:     []string{"catalogs", "list"},
		},
		{
			name:       "catalogs create",
			resource:   Catalogs,
			op:         Create,
			positional: []string{"c1"},
			named: []Flag{
				{Key: "type", Value: "T1"},
				{Key: "storage-type", Value: "S1"},
				{Key: "default-base-location", Value: "L1"},
			},
			want: []string{"catalogs", "create", "c1", "--type", "T1", "--storage-type", "S1", "--default-base-location", "L1"},
		},
		{
			name:       "principal-roles grant",
			resource:   PrincipalRoles,
			op:         Grant,
			positional: []string{"admin"},
			named:      []Flag{{Key: "principal", Value: "svc1"}},
			want:       []string{"principal-roles", "grant", "admin", "--principal", "svc1"},
		},
		{
			name:       "catalog-roles revoke",
			resource:   CatalogRoles,
			op:         Revoke,
			positional: []string{"reader"},
			named:      []Flag{{Key: "catalog", Value: "c1"}, {Key: "principal-role", Value: "analysts"}},
			want:       []string{"catalog-roles", "revoke", "reader", "--catalog", "c1", "--principal-role", "analysts"},
		},
		{
			name:       "catalog-roles list positional filter",
			resource:   CatalogRoles,
			op:         List,
			positional: []string{"c1"},
			want:       []string{"catalog-roles", "list", "c1"},
		},
		{
			name:       "multi-token operation",
			resource:   Privileges,
			op:         "catalog grant",
			positional: []string{"CATALOG_MANAGE_CONTENT"},
			named:      []Flag{{Key: "catalog", Value: "c1"}, {Key: "catalog-role", Value: "reader"}},
			want:       []string{"privileges", "catalog", "grant", "CATALOG_MANAGE_CONTENT", "--catalog", "c1", "--catalog-role", "reader"},
		},
		{
			name:       "value with shell metacharacters stays one token",
			resource:   Catalogs,
			op:         Delete,
			positional: []string{"c1; rm -rf /"},
			want:       []string{"catalogs", "delete", "c1; rm -rf /"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Build(testConn, tt.resource, tt.op, tt.positional, tt.named)
			want := append(slices.Clone(prefix), tt.want...)
			if got := cmd.Args(); !slices.Equal(got, want) {
				t.Errorf("Args() = %q, want %q", got, want)
			}
			if cmd.Executable() != "./polaris" {
				t.Errorf("Executable() = %q", cmd.Executable())
			}

			again := Build(testConn, tt.resource, tt.op, tt.positional, tt.named)
			if !slices.Equal(again.Tokens(), cmd.Tokens()) {
				t.Error("Build is not deterministic")
			}
		})
	}
}

func TestBuildEmptyConnectionValuesPassThrough(t *testing.T) {
	cmd := Build(config.Connection{ExecutablePath: "polaris"}, Principals, List, nil, nil)
	want := []string{"--host", "", "--port", "", "--client-id", "", "--client-secret", "", "principals", "list"}
	if got := cmd.Args(); !slices.Equal(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}
}

func TestArgsReturnsCopy(t *testing.T) {
	cmd := Build(testConn, Catalogs, List, nil, nil)
	args := cmd.Args()
	args[0] = "mutated"
	if cmd.Args()[0] != "--host" {
		t.Error("Command was mutated through Args()")
	}
}

func TestRedacted(t *testing.T) {
	cmd := Build(testConn, Catalogs, Delete, []string{"c1"}, nil)
	want := "./polaris --host localhost --port 8181 --client-id root --client-secret *** catalogs delete c1"
	if got := cmd.Redacted(); got != want {
		t.Errorf("Redacted() = %q, want %q", got, want)
	}
}
