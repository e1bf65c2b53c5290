// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/dsn"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the effective connection settings",
	Long: `profile prints the connection the other commands would use, after flags,
environment, config file and keychain are combined. The client secret is never
shown; only where it comes from.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		km, kmErr := openKeychain()

		secretSource := "not set"
		var loadSecret config.SecretLoader
		switch {
		case flags.clientSecret != "":
			secretSource = "--client-secret flag"
		case os.Getenv(config.EnvClientSecret) != "":
			secretSource = config.EnvClientSecret
		case kmErr == nil:
			loadSecret = km.LoadClientSecret
		}
		conn := config.Resolve(overrides(), cfg, loadSecret)
		if loadSecret != nil && conn.ClientSecret != "" {
			secretSource = "OS keychain"
		}

		bridgeSocket := config.BridgeSocket(flags.bridgeSocket, cfg)
		if bridgeSocket == "" {
			bridgeSocket = "in-process host"
		}

		audit := "disabled"
		if raw := auditDSN(km); raw != "" {
			if info, err := dsn.ParseInfo(raw); err == nil {
				audit = info.Redacted()
			} else {
				audit = "invalid DSN"
			}
		}

		cfgPath, _ := config.Path()
		parallel := flags.parallel
		if parallel == 0 {
			parallel = cfg.SyncParallelism
		}

		lines := []string{
			row("Service", conn.Host+":"+conn.Port),
			row("Client id", conn.ClientID),
			row("Client secret", secretSource),
			row("Polaris client", conn.ExecutablePath),
			row("Execution host", bridgeSocket),
			row("Sync parallelism", strconv.Itoa(parallel)),
			row("Audit journal", audit),
			row("Config file", cfgPath),
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Connection")).
			WithPadding(1).
			Println(strings.Join(lines, "\n"))
		pterm.Println()
		pterm.Println("To update these settings, run: polarisdesk configure")
		return nil
	},
}

func row(label, value string) string {
	if value == "" {
		value = pterm.Gray("(empty)")
	}
	return pterm.Bold.Sprint(label) + ": " + value
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
