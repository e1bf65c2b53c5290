// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/audit"
	"polarisdesk/cli/internal/bridge"
	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/executor"
	"polarisdesk/cli/internal/response"
	"polarisdesk/cli/internal/terminal"
)

var configureSkipVerify bool

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set up the connection to the Polaris service",
	Long: `configure prompts for the service address, the client id, the client secret
and the path of the polaris client. The connection is verified by listing
catalogs before anything is saved. The client secret is stored in the OS
keychain; everything else goes to the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		reader := bufio.NewReader(os.Stdin)

		ask := func(label, current string) (string, error) {
			prompt := fmt.Sprintf("%s [%s]: ", label, current)
			v, err := terminal.ReadLine(reader, prompt)
			if err != nil {
				return "", err
			}
			if v == "" {
				return current, nil
			}
			return v, nil
		}

		if cfg.Host, err = ask("Polaris host", cfg.Host); err != nil {
			return err
		}
		if cfg.Port, err = ask("Polaris port", cfg.Port); err != nil {
			return err
		}
		if cfg.ClientID, err = ask("Client id", cfg.ClientID); err != nil {
			return err
		}
		if cfg.ExecutablePath, err = ask("Path to the polaris client", cfg.ExecutablePath); err != nil {
			return err
		}
		if cfg.ClientID == "" {
			return fmt.Errorf("client id is required")
		}

		secret, err := terminal.ReadSecret("Client secret (input hidden, empty keeps the stored one): ")
		if err != nil {
			return err
		}

		km, kmErr := openKeychain()
		if secret == "" && kmErr == nil {
			secret, _ = km.LoadClientSecret(cfg.ClientID)
		}
		if secret == "" {
			return fmt.Errorf("client secret is required")
		}

		conn := config.Connection{
			Host:           cfg.Host,
			Port:           cfg.Port,
			ClientID:       cfg.ClientID,
			ClientSecret:   secret,
			ExecutablePath: cfg.ExecutablePath,
		}
		if !configureSkipVerify {
			n, err := verifyConnection(cmd.Context(), cfg, conn)
			if err != nil {
				return err
			}
			pterm.Info.Printfln("Service reachable, %d catalogs visible", n)
		}

		if err := config.Save(cfg); err != nil {
			pterm.Error.Println("Failed to save the config file.")
			return err
		}
		if kmErr != nil {
			pterm.Warning.Println("Secure storage is not available on this system; the client secret was not saved.")
			pterm.Println("   Pass it with " + config.EnvClientSecret + " instead.")
			return nil
		}
		if err := km.SaveClientSecret(cfg.ClientID, secret); err != nil {
			pterm.Error.Println("Failed to save the client secret securely.")
			return err
		}

		done("Connection verified and saved")
		pterm.Println("   You're ready to run 'polarisdesk sync'")
		return nil
	},
}

// verifyConnection lists catalogs with the candidate settings and returns
// how many are visible. The listing runs asynchronously so the spinner keeps
// turning, and an interrupt stops the wait.
func verifyConnection(ctx context.Context, cfg config.Config, conn config.Connection) (int, error) {
	br, err := newBridge(bridge.Options{
		SocketPath: config.BridgeSocket(flags.bridgeSocket, cfg),
		Logger:     slog.Default(),
	})
	if err != nil {
		return 0, fail("reach the execution host", err)
	}
	defer br.Close()

	exec := &executor.Executor{Bridge: br, Journal: audit.Nop{}}
	pending := exec.Go(ctx, command.Build(conn, command.Catalogs, command.List, nil, nil))

	stop := startInlineSpinner(os.Stdout, "verifying connection", spinnerFrames, 100*time.Millisecond)
	var res executor.Result
	select {
	case res = <-pending:
		stop()
	case <-ctx.Done():
		stop()
		return 0, ctx.Err()
	}
	if err := res.Err(); err != nil {
		return 0, fail("verify the connection", err)
	}
	catalogs, err := response.DecodeLines[response.CatalogRecord](res.Stdout)
	if err != nil {
		return 0, fail("verify the connection", err)
	}
	return len(catalogs), nil
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().BoolVar(&configureSkipVerify, "skip-verify", false, "save without listing catalogs first")
}
