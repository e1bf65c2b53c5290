// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the polarisdesk command-line interface. Every
// command builds its invocations for the external polaris client, runs
// them across the execution bridge and renders the parsed records with
// pterm.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/logging"
)

// globalFlags are the persistent flags shared by all commands. Empty
// values mean "not given" and fall through to env, config and defaults.
type globalFlags struct {
	host         string
	port         string
	clientID     string
	clientSecret string
	cliPath      string
	bridgeSocket string
	auditDSN     string
	output       string
	parallel     int
	verbose      bool
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:   "polarisdesk",
	Short: "Operator console for an Apache Polaris catalog service",
	Long: `polarisdesk manages catalogs, principals, roles and grants of a Polaris
service by driving the polaris command-line client. Commands are executed by a
privileged host, either in-process or a separate 'polarisdesk host' reached
over a Unix socket.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		level := cfg.LogLevel
		if flags.verbose {
			level = "debug"
		}
		slog.SetDefault(logging.New(level, os.Stderr))
		return nil
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var shown errSilent
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, logging.PresentError("", err))
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.host, "host", "", "Polaris service host (env "+config.EnvHost+")")
	pf.StringVar(&flags.port, "port", "", "Polaris service port (env "+config.EnvPort+")")
	pf.StringVar(&flags.clientID, "client-id", "", "OAuth client id (env "+config.EnvClientID+")")
	pf.StringVar(&flags.clientSecret, "client-secret", "", "OAuth client secret; prefer the keychain or "+config.EnvClientSecret)
	pf.StringVar(&flags.cliPath, "cli-path", "", "path to the polaris client (env "+config.EnvExecutablePath+")")
	pf.StringVar(&flags.bridgeSocket, "bridge-socket", "", "socket of a running 'polarisdesk host'; empty runs commands in-process")
	pf.StringVar(&flags.auditDSN, "audit-dsn", "", "PostgreSQL DSN of the audit journal (env "+config.EnvAuditDSN+")")
	pf.StringVarP(&flags.output, "output", "o", "", "output format: table or json")
	pf.IntVar(&flags.parallel, "parallel", 0, "concurrent child listings during sync (1 = sequential)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
}
