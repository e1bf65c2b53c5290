// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"polarisdesk/cli/internal/xdg"
)

// Defaults mirror the stock external client layout.
const (
	DefaultExecutablePath = "./polaris"
	DefaultHost           = "localhost"
	DefaultPort           = "8181"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel        string `json:"log_level"`
	ExecutablePath  string `json:"executable_path"`
	Host            string `json:"host"`
	Port            string `json:"port"`
	ClientID        string `json:"client_id"`
	BridgeSocket    string `json:"bridge_socket,omitempty"`
	SyncParallelism int    `json:"sync_parallelism"`
	Output          string `json:"output"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		LogLevel:        "info",
		ExecutablePath:  DefaultExecutablePath,
		Host:            DefaultHost,
		Port:            DefaultPort,
		SyncParallelism: 1,
		Output:          "table",
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Path exposes the config file location for display.
func Path() (string, error) { return path() }

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	c := Default()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
