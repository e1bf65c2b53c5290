// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"os"
	"strings"
)

// Environment variables consulted when a flag is not given.
const (
	EnvExecutablePath = "POLARIS_CLI_PATH"
	EnvHost           = "POLARIS_HOST"
	EnvPort           = "POLARIS_PORT"
	EnvClientID       = "POLARIS_CLIENT_ID"
	EnvClientSecret   = "POLARIS_CLIENT_SECRET"
	EnvBridgeSocket   = "POLARISDESK_BRIDGE_SOCKET"
	EnvAuditDSN       = "POLARISDESK_AUDIT_DSN"
)

// Connection is everything the external client needs to reach the service.
// It is a plain value: built once per invocation and passed to every
// operation. Empty fields are forwarded as-is.
type Connection struct {
	Host           string
	Port           string
	ClientID       string
	ClientSecret   string
	ExecutablePath string
}

// Overrides carries values given explicitly on the command line.
// An empty field means "not given".
type Overrides struct {
	Host           string
	Port           string
	ClientID       string
	ClientSecret   string
	ExecutablePath string
}

// SecretLoader looks up a stored client secret for a client id.
type SecretLoader func(clientID string) (string, error)

// Resolve builds a Connection from, in order of precedence, explicit
// overrides, environment, the config file and built-in defaults. The
// client secret falls back to the secret loader (normally the OS keychain);
// a loader error leaves the secret empty.
func Resolve(o Overrides, c Config, loadSecret SecretLoader) Connection {
	conn := Connection{
		Host:           first(o.Host, os.Getenv(EnvHost), c.Host, DefaultHost),
		Port:           first(o.Port, os.Getenv(EnvPort), c.Port, DefaultPort),
		ClientID:       first(o.ClientID, os.Getenv(EnvClientID), c.ClientID),
		ExecutablePath: first(o.ExecutablePath, os.Getenv(EnvExecutablePath), c.ExecutablePath, DefaultExecutablePath),
	}
	conn.ClientSecret = first(o.ClientSecret, os.Getenv(EnvClientSecret))
	if conn.ClientSecret == "" && loadSecret != nil && conn.ClientID != "" {
		if s, err := loadSecret(conn.ClientID); err == nil {
			conn.ClientSecret = s
		}
	}
	return conn
}

// BridgeSocket returns the privileged host socket path, if one is configured.
func BridgeSocket(flag string, c Config) string {
	return first(flag, os.Getenv(EnvBridgeSocket), c.BridgeSocket)
}

func first(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
