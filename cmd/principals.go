// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/console"
	"polarisdesk/cli/internal/resource"
	"polarisdesk/cli/internal/response"
)

var principalColumns = []column[response.PrincipalRecord]{
	{"NAME", func(p response.PrincipalRecord) string { return p.Name }},
	{"CLIENT ID", func(p response.PrincipalRecord) string { return p.ClientID }},
	{"VERSION", func(p response.PrincipalRecord) string { return p.EntityVersion.String() }},
}

var credentialColumns = []column[response.CredentialsRecord]{
	{"Client ID", func(c response.CredentialsRecord) string { return c.ClientID }},
	{"Client secret", func(c response.CredentialsRecord) string { return c.ClientSecret }},
}

var principalsCmd = &cobra.Command{
	Use:     "principals",
	Aliases: []string{"principal"},
	Short:   "Manage principals and their credentials",
}

var principalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List principals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		principals, err := a.set.Principals.List(cmd.Context(), a.conn)
		if err != nil {
			return fail("list principals", err)
		}
		return render(a, principals, principalColumns)
	},
}

var principalsGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Show one principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		p, err := a.set.Principals.Get(cmd.Context(), a.conn, args[0])
		if err != nil {
			return fail("get principal "+args[0], err)
		}
		return renderOne(a, "Principal", p, principalColumns)
	},
}

var principalType string

var principalsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a principal and print its credentials",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		creds, err := a.console.CreatePrincipal(cmd.Context(), a.conn, args[0], principalType)
		if err != nil {
			return fail("create principal "+args[0], err)
		}
		if err := showCredentials(a, args[0], creds); err != nil {
			return err
		}
		return showRefreshed(a, console.PartPrincipals)
	},
}

var principalsRotateCmd = &cobra.Command{
	Use:   "rotate-credentials NAME",
	Short: "Issue new credentials for a principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		creds, err := a.console.RotatePrincipalCredentials(cmd.Context(), a.conn, args[0])
		if err != nil {
			return fail("rotate credentials of "+args[0], err)
		}
		if err := showCredentials(a, args[0], creds); err != nil {
			return err
		}
		return showRefreshed(a, console.PartPrincipals)
	},
}

var principalsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.DeletePrincipal(cmd.Context(), a.conn, args[0]); err != nil {
			return fail("delete principal "+args[0], err)
		}
		done("Principal %s deleted", args[0])
		return showRefreshed(a, console.PartPrincipals)
	},
}

func showCredentials(a *app, principal string, creds response.CredentialsRecord) error {
	if err := renderOne(a, "Credentials for "+principal, creds, credentialColumns); err != nil {
		return err
	}
	if a.output != "json" {
		pterm.Warning.Println("The client secret is shown only once. Store it now.")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(principalsCmd)
	principalsCmd.AddCommand(principalsListCmd, principalsGetCmd, principalsCreateCmd, principalsRotateCmd, principalsDeleteCmd)
	principalsCreateCmd.Flags().StringVar(&principalType, "type", resource.DefaultPrincipalType, "principal type")
}
