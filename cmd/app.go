// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"polarisdesk/cli/internal/audit"
	"polarisdesk/cli/internal/bridge"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/console"
	"polarisdesk/cli/internal/executor"
	"polarisdesk/cli/internal/keychain"
	"polarisdesk/cli/internal/progress"
	"polarisdesk/cli/internal/resource"
	"polarisdesk/cli/internal/snapshot"
	"polarisdesk/cli/internal/terminal"
)

// Seams replaced in tests.
var (
	newBridge    = bridge.New
	openKeychain = keychain.GetManager
)

// stdout receives JSON output and failure reports.
var stdout io.Writer = os.Stdout

// app is everything one command invocation needs. It is assembled from the
// global flags by openApp and torn down by close.
type app struct {
	cfg      config.Config
	conn     config.Connection
	set      *resource.Set
	console  *console.Console
	renderer *progress.Renderer
	output   string

	bridge  bridge.Bridge
	journal *audit.Postgres
}

func openApp(ctx context.Context) (*app, error) {
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var km *keychain.Manager
	if m, err := openKeychain(); err == nil {
		km = m
	} else {
		logger.Debug("keychain unavailable", "error", err)
	}

	var loadSecret config.SecretLoader
	if km != nil {
		loadSecret = km.LoadClientSecret
	}
	conn := config.Resolve(overrides(), cfg, loadSecret)

	br, err := newBridge(bridge.Options{
		SocketPath: config.BridgeSocket(flags.bridgeSocket, cfg),
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, conn: conn, bridge: br, output: outputFormat(cfg)}

	exec := &executor.Executor{Bridge: br, Journal: audit.Nop{}, Logger: logger}
	if dsn := auditDSN(km); dsn != "" {
		j, err := audit.Open(ctx, dsn)
		if err != nil {
			logger.Warn("audit journal disabled", "error", err)
		} else {
			a.journal = j
			exec.Journal = j
		}
	}

	parallel := flags.parallel
	if parallel == 0 {
		parallel = cfg.SyncParallelism
	}
	orch := &snapshot.Orchestrator{Parallelism: parallel, Logger: logger}
	if a.output == "table" && terminal.IsInteractive() {
		a.renderer = progress.NewRenderer()
		orch.Observer = a.renderer
	}

	a.set = resource.NewSet(exec)
	a.console = console.New(a.set, orch)
	a.console.Logger = logger
	return a, nil
}

func (a *app) close() {
	if a.journal != nil {
		a.journal.Close()
	}
	_ = a.bridge.Close()
}

func overrides() config.Overrides {
	return config.Overrides{
		Host:           flags.host,
		Port:           flags.port,
		ClientID:       flags.clientID,
		ClientSecret:   flags.clientSecret,
		ExecutablePath: flags.cliPath,
	}
}

// auditDSN resolves flag, then env, then keychain.
func auditDSN(km *keychain.Manager) string {
	if v := strings.TrimSpace(flags.auditDSN); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(config.EnvAuditDSN)); v != "" {
		return v
	}
	if km == nil {
		return ""
	}
	v, err := km.LoadAuditDSN()
	if err != nil {
		return ""
	}
	return v
}

func outputFormat(cfg config.Config) string {
	switch strings.ToLower(flags.output) {
	case "json":
		return "json"
	case "table":
		return "table"
	}
	if strings.EqualFold(cfg.Output, "json") {
		return "json"
	}
	return "table"
}
