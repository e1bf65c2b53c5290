// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/config"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage secrets stored in the OS keychain",
}

var credentialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored client secret and audit DSN",
	Long: `clear removes from the OS keychain the client secret of the configured
client id (or --client-id) and the audit journal DSN. The config file is kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := openKeychain()
		if err != nil {
			pterm.Error.Println("Secure storage is not available on this system.")
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var ids []string
		for _, id := range []string{flags.clientID, cfg.ClientID} {
			if id != "" {
				ids = append(ids, id)
			}
		}
		if err := km.ClearAll(ids...); err != nil {
			pterm.Warning.Println("Some secrets could not be removed: " + err.Error())
			return errSilent{err}
		}
		done("Stored secrets have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsClearCmd)
}
