// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/99designs/keyring"

	"polarisdesk/cli/internal/bridge"
	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/keychain"
	"polarisdesk/cli/internal/resource"
	"polarisdesk/cli/internal/resource/resourcetest"
)

// serviceBridge answers bridge requests from an in-memory service.
type serviceBridge struct{ svc *resourcetest.Service }

func (b serviceBridge) RunCommand(ctx context.Context, executable string, args []string) (string, error) {
	if len(args) < 8 {
		return "", errors.New("missing connection arguments")
	}
	conn := config.Connection{Host: args[1], Port: args[3], ClientID: args[5], ClientSecret: args[7], ExecutablePath: executable}
	res := b.svc.Execute(ctx, command.Build(conn, "", "", args[8:], nil))
	if !res.OK() {
		return "", res.Failure
	}
	return res.Stdout, nil
}

func (serviceBridge) Close() error { return nil }

// useService points every seam of the command layer at svc and returns the
// buffer that receives JSON output and failure reports.
func useService(t *testing.T, svc *resourcetest.Service) *bytes.Buffer {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvAuditDSN, "")
	t.Setenv(config.EnvBridgeSocket, "")

	prevBridge, prevKeychain, prevStdout := newBridge, openKeychain, stdout
	out := &bytes.Buffer{}
	newBridge = func(bridge.Options) (bridge.Bridge, error) { return serviceBridge{svc}, nil }
	openKeychain = func() (*keychain.Manager, error) {
		return keychain.NewWithKeyring(keyring.NewArrayKeyring(nil)), nil
	}
	stdout = out

	reset := func() {
		flags = globalFlags{}
		syncGrantsFor = nil
		newCatalog = resource.CatalogSpec{}
		rolePrincipal, roleCatalog, rolePrincipalRole = "", "", ""
		privCatalog, privCatalogRole, privNamespace, privTable = "", "", "", ""
	}
	reset()
	t.Cleanup(func() {
		newBridge, openKeychain, stdout = prevBridge, prevKeychain, prevStdout
		reset()
	})
	return out
}

func runCLI(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestMutationResyncsDisplayedPart(t *testing.T) {
	tests := []struct {
		name     string
		seed     func(*resourcetest.Service)
		args     []string
		mutation string
		relist   string
	}{
		{
			name:     "catalog create",
			args:     []string{"catalogs", "create", "c1", "--storage-type", "FILE", "--default-base-location", "file:///tmp/c1"},
			mutation: "catalogs create c1",
			relist:   "catalogs list",
		},
		{
			name: "principal delete",
			seed: func(s *resourcetest.Service) {
				s.AddPrincipal("etl")
			},
			args:     []string{"principals", "delete", "etl"},
			mutation: "principals delete etl",
			relist:   "principals list",
		},
		{
			name: "principal-role grant",
			seed: func(s *resourcetest.Service) {
				s.AddPrincipal("etl")
				s.AddPrincipalRole("analysts")
			},
			args:     []string{"principal-roles", "grant", "analysts", "--principal", "etl"},
			mutation: "principal-roles grant analysts --principal etl",
			relist:   "principal-roles list --principal etl",
		},
		{
			name: "catalog-role create",
			seed: func(s *resourcetest.Service) {
				s.AddCatalog("sales")
			},
			args:     []string{"catalog-roles", "create", "reader", "--catalog", "sales"},
			mutation: "catalog-roles create reader --catalog sales",
			relist:   "catalog-roles list sales",
		},
		{
			name: "privilege grant",
			seed: func(s *resourcetest.Service) {
				s.AddCatalog("sales", "reader")
			},
			args:     []string{"privileges", "grant", "table", "TABLE_READ_DATA", "--catalog", "sales", "--catalog-role", "reader", "--namespace", "db.orders", "--table", "items"},
			mutation: "privileges table grant TABLE_READ_DATA",
			relist:   "privileges list --catalog sales --catalog-role reader",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := resourcetest.New()
			if tt.seed != nil {
				tt.seed(svc)
			}
			useService(t, svc)

			if err := runCLI(tt.args...); err != nil {
				t.Fatalf("run %v: %v", tt.args, err)
			}

			calls := svc.Calls()
			if len(calls) < 2 || !strings.HasPrefix(calls[0], tt.mutation) {
				t.Fatalf("calls = %q, want %q first", calls, tt.mutation)
			}
			if !slices.ContainsFunc(calls[1:], func(c string) bool { return strings.HasPrefix(c, tt.relist) }) {
				t.Errorf("calls = %q, want a %q after the mutation", calls, tt.relist)
			}
		})
	}
}

func TestFailedMutationSkipsResync(t *testing.T) {
	svc := resourcetest.New()
	svc.FailOn("catalogs create", "Exception when communicating with the Polaris server. 409 Catalog c1 already exists")
	out := useService(t, svc)

	err := runCLI("catalogs", "create", "c1", "--storage-type", "FILE", "--default-base-location", "file:///tmp/c1")
	var shown errSilent
	if !errors.As(err, &shown) {
		t.Fatalf("error = %v, want an already reported failure", err)
	}
	if calls := svc.Calls(); len(calls) != 1 {
		t.Errorf("calls = %q, want only the create", calls)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("output = %q, want the client's rejection", out.String())
	}
}

func TestSyncJSONReportsFailedParts(t *testing.T) {
	svc := resourcetest.New()
	svc.AddCatalog("sales", "reader")
	svc.FailOn("catalogs list", "ForbiddenException: denied")
	svc.FailOn("principals list", "ForbiddenException: denied")
	svc.FailOn("principal-roles list", "ForbiddenException: denied")
	out := useService(t, svc)

	err := runCLI("sync", "-o", "json")
	var shown errSilent
	if !errors.As(err, &shown) {
		t.Fatalf("error = %v, want a non-zero exit", err)
	}

	var doc syncOutput
	if err := json.NewDecoder(out).Decode(&doc); err != nil {
		t.Fatalf("decode sync output: %v", err)
	}
	for _, part := range []string{"catalogs", "principals", "principal-roles", "catalog-role-assignments", "principal-role-assignments"} {
		if !strings.Contains(doc.Errors[part], "denied") {
			t.Errorf("errors[%q] = %q, want the failure", part, doc.Errors[part])
		}
	}
}

func TestSyncGrantsFailure(t *testing.T) {
	tests := []struct {
		name   string
		output string
		check  func(t *testing.T, out string)
	}{
		{
			name:   "table",
			output: "table",
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "load grants of sales") {
					t.Errorf("output = %q, want the grants failure", out)
				}
			},
		},
		{
			name:   "json",
			output: "json",
			check: func(t *testing.T, out string) {
				var doc syncOutput
				if err := json.Unmarshal([]byte(out), &doc); err != nil {
					t.Fatalf("decode sync output: %v", err)
				}
				if !strings.Contains(doc.Errors["grants/sales"], "denied") {
					t.Errorf("errors = %v, want grants/sales", doc.Errors)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := resourcetest.New()
			svc.AddCatalog("sales", "reader")
			svc.FailOn("catalog-roles list sales", "ForbiddenException: denied")
			out := useService(t, svc)

			err := runCLI("sync", "--grants", "sales", "-o", tt.output)
			if err == nil {
				t.Fatal("sync succeeded, want an error for the failed grants view")
			}
			tt.check(t, out.String())
		})
	}
}

func TestVerifyConnection(t *testing.T) {
	conn := config.Connection{Host: "localhost", Port: "8181", ClientID: "root", ClientSecret: "s3cr3t", ExecutablePath: "./polaris"}

	t.Run("counts visible catalogs", func(t *testing.T) {
		svc := resourcetest.New()
		svc.AddCatalog("sales")
		svc.AddCatalog("ops")
		useService(t, svc)

		n, err := verifyConnection(context.Background(), config.Default(), conn)
		if err != nil {
			t.Fatalf("verifyConnection() error = %v", err)
		}
		if n != 2 {
			t.Errorf("verifyConnection() = %d, want 2", n)
		}
		if calls := svc.Calls(); !slices.Equal(calls, []string{"catalogs list"}) {
			t.Errorf("calls = %q", calls)
		}
	})

	t.Run("rejected credentials", func(t *testing.T) {
		svc := resourcetest.New()
		svc.FailOn("catalogs list", "401 Unauthorized: invalid_client")
		useService(t, svc)

		if _, err := verifyConnection(context.Background(), config.Default(), conn); err == nil {
			t.Fatal("verifyConnection() succeeded, want an error")
		}
	})
}
