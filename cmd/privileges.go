// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/resource"
	"polarisdesk/cli/internal/response"
)

var grantColumns = []column[response.GrantRecord]{
	{"TYPE", func(g response.GrantRecord) string { return g.Type }},
	{"PRIVILEGE", func(g response.GrantRecord) string { return g.Privilege }},
	{"NAMESPACE", func(g response.GrantRecord) string { return strings.Join(g.Namespace, ".") }},
	{"TABLE/VIEW", func(g response.GrantRecord) string { return g.TableName + g.ViewName }},
}

var (
	privCatalog     string
	privCatalogRole string
	privNamespace   string
	privTable       string
)

var privilegesCmd = &cobra.Command{
	Use:   "privileges",
	Short: "Manage privileges held by catalog-roles",
}

var privilegesListCmd = &cobra.Command{
	Use:   "list --catalog CATALOG --catalog-role ROLE",
	Short: "List the privileges of a catalog-role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		grants, err := a.set.Privileges.List(cmd.Context(), a.conn, privCatalog, privCatalogRole)
		if err != nil {
			return fail("list privileges of "+privCatalogRole, err)
		}
		return render(a, grants, grantColumns)
	},
}

func privilegeSpec(args []string) resource.PrivilegeSpec {
	spec := resource.PrivilegeSpec{
		Scope:       resource.Scope(strings.ToLower(args[0])),
		Privilege:   args[1],
		Catalog:     privCatalog,
		CatalogRole: privCatalogRole,
		Table:       privTable,
	}
	if privNamespace != "" {
		spec.Namespace = strings.Split(privNamespace, ".")
	}
	return spec
}

var privilegesGrantCmd = &cobra.Command{
	Use:   "grant SCOPE PRIVILEGE",
	Short: "Grant a privilege to a catalog-role",
	Long: `Grant a privilege on a catalog, namespace, table or view to a catalog-role.
SCOPE is one of catalog, namespace, table or view.`,
	Example: `  polarisdesk privileges grant table TABLE_READ_DATA --catalog sales \
    --catalog-role reader --namespace db.orders --table items`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		spec := privilegeSpec(args)
		if err := a.console.GrantPrivilege(cmd.Context(), a.conn, spec); err != nil {
			return fail("grant "+spec.Privilege, err)
		}
		done("%s granted to %s", spec.Privilege, spec.CatalogRole)
		return showGrants(a, spec.Catalog)
	},
}

var privilegesRevokeCmd = &cobra.Command{
	Use:   "revoke SCOPE PRIVILEGE",
	Short: "Revoke a privilege from a catalog-role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		spec := privilegeSpec(args)
		if err := a.console.RevokePrivilege(cmd.Context(), a.conn, spec); err != nil {
			return fail("revoke "+spec.Privilege, err)
		}
		done("%s revoked from %s", spec.Privilege, spec.CatalogRole)
		return showGrants(a, spec.Catalog)
	},
}

func init() {
	rootCmd.AddCommand(privilegesCmd)
	privilegesCmd.AddCommand(privilegesListCmd, privilegesGrantCmd, privilegesRevokeCmd)

	for _, c := range privilegesCmd.Commands() {
		c.Flags().StringVar(&privCatalog, "catalog", "", "catalog name")
		c.Flags().StringVar(&privCatalogRole, "catalog-role", "", "catalog-role name")
		_ = c.MarkFlagRequired("catalog")
		_ = c.MarkFlagRequired("catalog-role")
	}
	for _, c := range []*cobra.Command{privilegesGrantCmd, privilegesRevokeCmd} {
		c.Flags().StringVar(&privNamespace, "namespace", "", "dotted namespace, e.g. db.orders")
		c.Flags().StringVar(&privTable, "table", "", "table or view name")
	}
}
