// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain keeps polarisdesk secrets in the OS credential store:
// the client secret of each configured client id and the audit journal DSN.
// Nothing secret is ever written to the config file.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

var (
	globalManager *Manager
	mu            sync.Mutex
)

// ErrNotFound is returned when no secret is stored under a key.
var ErrNotFound = errors.New("secret not found in keychain")

// ServiceName identifies our credential store namespace.
const ServiceName = "polarisdesk"

const (
	keyClientSecretPrefix = "client_secret:"
	KeyAuditDSN           = "audit_dsn"
)

// backend is the minimal store a Manager needs.
type backend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides thread-safe access to the stored secrets.
type Manager struct {
	mu    sync.RWMutex
	store backend
}

// NewManager opens the platform store. On macOS the security(1) tool is
// preferred; everywhere else the keyring library picks a native backend.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if b, err := newSecurityBackend(); err == nil {
			return &Manager{store: b}, nil
		}
	}
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewWithKeyring(ring), nil
}

// NewWithKeyring wraps an already opened keyring, e.g. keyring.NewArrayKeyring
// in tests.
func NewWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{store: ringBackend{ring: ring}}
}

// GetManager returns the process-wide manager, opening it on first use. A
// failed open is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return m, nil
}

func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage is not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
		KWalletAppID:    ServiceName,
		KWalletFolder:   ServiceName,
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

type ringBackend struct {
	ring keyring.Keyring
}

func (r ringBackend) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (r ringBackend) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringBackend) Delete(key string) error {
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (m *Manager) set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Set(key, value)
}

func (m *Manager) get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, err := m.store.Get(key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Manager) remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(key)
}

func clientSecretKey(clientID string) string { return keyClientSecretPrefix + clientID }

// SaveClientSecret stores the secret used with clientID.
func (m *Manager) SaveClientSecret(clientID, secret string) error {
	if clientID == "" {
		return errors.New("client id is required to store a secret")
	}
	return m.set(clientSecretKey(clientID), secret)
}

// LoadClientSecret matches config.SecretLoader.
func (m *Manager) LoadClientSecret(clientID string) (string, error) {
	return m.get(clientSecretKey(clientID))
}

// ClearClientSecret removes the secret for clientID. A missing entry is not
// an error.
func (m *Manager) ClearClientSecret(clientID string) error {
	return m.remove(clientSecretKey(clientID))
}

// SaveAuditDSN stores the audit journal connection string.
func (m *Manager) SaveAuditDSN(dsn string) error { return m.set(KeyAuditDSN, dsn) }

func (m *Manager) LoadAuditDSN() (string, error) { return m.get(KeyAuditDSN) }

func (m *Manager) ClearAuditDSN() error { return m.remove(KeyAuditDSN) }

// ClearAll removes the audit DSN and the secrets of the given client ids.
// Every key is attempted; the errors are joined.
func (m *Manager) ClearAll(clientIDs ...string) error {
	errs := []error{m.ClearAuditDSN()}
	for _, id := range clientIDs {
		errs = append(errs, m.ClearClientSecret(id))
	}
	return errors.Join(errs...)
}
