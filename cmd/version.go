// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/bridge"
	"polarisdesk/cli/internal/config"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the console and polaris client versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.Printfln("polarisdesk %s", Version)

		cfg, err := config.Load()
		if err != nil {
			return nil
		}
		conn := config.Resolve(overrides(), cfg, nil)

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		br, err := newBridge(bridge.Options{SocketPath: config.BridgeSocket(flags.bridgeSocket, cfg)})
		if err != nil {
			return nil
		}
		defer br.Close()
		out, err := br.RunCommand(ctx, conn.ExecutablePath, []string{"--version"})
		if err != nil {
			pterm.Printfln("polaris client %s", pterm.Gray("unknown ("+conn.ExecutablePath+" not runnable)"))
			return nil
		}
		pterm.Printfln("polaris client %s", firstLine(strings.TrimSpace(out)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = Version
}
