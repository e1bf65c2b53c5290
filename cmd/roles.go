// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/console"
	"polarisdesk/cli/internal/response"
)

var roleColumns = []column[response.RoleRecord]{
	{"NAME", func(r response.RoleRecord) string { return r.Name }},
	{"FEDERATED", func(r response.RoleRecord) string { return strconv.FormatBool(r.Federated) }},
	{"VERSION", func(r response.RoleRecord) string { return r.EntityVersion.String() }},
}

var (
	rolePrincipal     string
	roleCatalog       string
	rolePrincipalRole string
)

var principalRolesCmd = &cobra.Command{
	Use:   "principal-roles",
	Short: "Manage principal-roles and their assignment to principals",
}

var principalRolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List principal-roles, optionally only those of --principal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		roles, err := a.set.PrincipalRoles.List(cmd.Context(), a.conn, rolePrincipal)
		if err != nil {
			return fail("list principal-roles", err)
		}
		return render(a, roles, roleColumns)
	},
}

var principalRolesGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Show one principal-role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		r, err := a.set.PrincipalRoles.Get(cmd.Context(), a.conn, args[0])
		if err != nil {
			return fail("get principal-role "+args[0], err)
		}
		return renderOne(a, "Principal-role", r, roleColumns)
	},
}

var principalRolesCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a principal-role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.CreatePrincipalRole(cmd.Context(), a.conn, args[0]); err != nil {
			return fail("create principal-role "+args[0], err)
		}
		done("Principal-role %s created", args[0])
		return showRefreshed(a, console.PartPrincipalRoles)
	},
}

var principalRolesDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a principal-role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.DeletePrincipalRole(cmd.Context(), a.conn, args[0]); err != nil {
			return fail("delete principal-role "+args[0], err)
		}
		done("Principal-role %s deleted", args[0])
		return showRefreshed(a, console.PartPrincipalRoles)
	},
}

var principalRolesGrantCmd = &cobra.Command{
	Use:   "grant ROLE --principal NAME",
	Short: "Assign a principal-role to a principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.GrantPrincipalRole(cmd.Context(), a.conn, args[0], rolePrincipal); err != nil {
			return fail("grant "+args[0]+" to "+rolePrincipal, err)
		}
		done("Principal-role %s granted to %s", args[0], rolePrincipal)
		return showRefreshed(a, console.PartPrincipalRoleAssignments)
	},
}

var principalRolesRevokeCmd = &cobra.Command{
	Use:   "revoke ROLE --principal NAME",
	Short: "Remove a principal-role from a principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.RevokePrincipalRole(cmd.Context(), a.conn, args[0], rolePrincipal); err != nil {
			return fail("revoke "+args[0]+" from "+rolePrincipal, err)
		}
		done("Principal-role %s revoked from %s", args[0], rolePrincipal)
		return showRefreshed(a, console.PartPrincipalRoleAssignments)
	},
}

var catalogRolesCmd = &cobra.Command{
	Use:   "catalog-roles",
	Short: "Manage catalog-roles and their assignment to principal-roles",
}

var catalogRolesListCmd = &cobra.Command{
	Use:   "list CATALOG",
	Short: "List the catalog-roles of a catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		roles, err := a.set.CatalogRoles.List(cmd.Context(), a.conn, args[0])
		if err != nil {
			return fail("list catalog-roles of "+args[0], err)
		}
		return render(a, roles, roleColumns)
	},
}

var catalogRolesGetCmd = &cobra.Command{
	Use:   "get NAME --catalog CATALOG",
	Short: "Show one catalog-role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		r, err := a.set.CatalogRoles.Get(cmd.Context(), a.conn, args[0], roleCatalog)
		if err != nil {
			return fail("get catalog-role "+args[0], err)
		}
		return renderOne(a, "Catalog-role", r, roleColumns)
	},
}

var catalogRolesCreateCmd = &cobra.Command{
	Use:   "create NAME --catalog CATALOG",
	Short: "Create a catalog-role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.CreateCatalogRole(cmd.Context(), a.conn, args[0], roleCatalog); err != nil {
			return fail("create catalog-role "+args[0], err)
		}
		done("Catalog-role %s created in %s", args[0], roleCatalog)
		return showRefreshed(a, console.PartCatalogRoleAssignments)
	},
}

var catalogRolesDeleteCmd = &cobra.Command{
	Use:   "delete NAME [--catalog CATALOG]",
	Short: "Delete a catalog-role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.DeleteCatalogRole(cmd.Context(), a.conn, args[0], roleCatalog); err != nil {
			return fail("delete catalog-role "+args[0], err)
		}
		done("Catalog-role %s deleted", args[0])
		return showRefreshed(a, console.PartCatalogRoleAssignments)
	},
}

var catalogRolesGrantCmd = &cobra.Command{
	Use:   "grant ROLE --catalog CATALOG --principal-role NAME",
	Short: "Assign a catalog-role to a principal-role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.GrantCatalogRole(cmd.Context(), a.conn, args[0], roleCatalog, rolePrincipalRole); err != nil {
			return fail("grant "+args[0]+" to "+rolePrincipalRole, err)
		}
		done("Catalog-role %s/%s granted to %s", roleCatalog, args[0], rolePrincipalRole)
		return showRefreshed(a, console.PartCatalogRoleAssignments)
	},
}

var catalogRolesRevokeCmd = &cobra.Command{
	Use:   "revoke ROLE --catalog CATALOG --principal-role NAME",
	Short: "Remove a catalog-role from a principal-role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.RevokeCatalogRole(cmd.Context(), a.conn, args[0], roleCatalog, rolePrincipalRole); err != nil {
			return fail("revoke "+args[0]+" from "+rolePrincipalRole, err)
		}
		done("Catalog-role %s/%s revoked from %s", roleCatalog, args[0], rolePrincipalRole)
		return showRefreshed(a, console.PartCatalogRoleAssignments)
	},
}

func init() {
	rootCmd.AddCommand(principalRolesCmd, catalogRolesCmd)

	principalRolesCmd.AddCommand(principalRolesListCmd, principalRolesGetCmd, principalRolesCreateCmd,
		principalRolesDeleteCmd, principalRolesGrantCmd, principalRolesRevokeCmd)
	principalRolesListCmd.Flags().StringVar(&rolePrincipal, "principal", "", "only roles assigned to this principal")
	for _, c := range []*cobra.Command{principalRolesGrantCmd, principalRolesRevokeCmd} {
		c.Flags().StringVar(&rolePrincipal, "principal", "", "principal name")
		_ = c.MarkFlagRequired("principal")
	}

	catalogRolesCmd.AddCommand(catalogRolesListCmd, catalogRolesGetCmd, catalogRolesCreateCmd,
		catalogRolesDeleteCmd, catalogRolesGrantCmd, catalogRolesRevokeCmd)
	for _, c := range []*cobra.Command{catalogRolesGetCmd, catalogRolesCreateCmd, catalogRolesGrantCmd, catalogRolesRevokeCmd} {
		c.Flags().StringVar(&roleCatalog, "catalog", "", "catalog name")
		_ = c.MarkFlagRequired("catalog")
	}
	catalogRolesDeleteCmd.Flags().StringVar(&roleCatalog, "catalog", "", "catalog name")
	for _, c := range []*cobra.Command{catalogRolesGrantCmd, catalogRolesRevokeCmd} {
		c.Flags().StringVar(&rolePrincipalRole, "principal-role", "", "principal-role name")
		_ = c.MarkFlagRequired("principal-role")
	}
}
