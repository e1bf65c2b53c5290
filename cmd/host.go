// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/bridge/grpchost"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/hostexec"
	"polarisdesk/cli/internal/xdg"
)

var hostSocket string

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run the privileged execution host",
	Long: `host serves command execution requests on a Unix socket. It is the only
process that starts the polaris client; consoles started with --bridge-socket
send their invocations here. Stop it with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		socket := config.BridgeSocket(hostSocket, cfg)
		if socket == "" {
			if socket, err = xdg.SocketPath(); err != nil {
				return fmt.Errorf("no socket path: %w", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := slog.Default()
		srv := &grpchost.Server{
			Runner: &hostexec.Runner{Logger: logger},
			Logger: logger,
		}
		pterm.Info.Printfln("Execution host listening on %s", socket)
		return srv.Serve(ctx, socket)
	},
}

func init() {
	rootCmd.AddCommand(hostCmd)
	hostCmd.Flags().StringVar(&hostSocket, "socket", "", "Unix socket path (env "+config.EnvBridgeSocket+"; default in the XDG state dir)")
}
