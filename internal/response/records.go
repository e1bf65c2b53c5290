// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package response

import (
	"encoding/json"
	"fmt"

	"polarisdesk/cli/internal/errors"
)

// Identified is implemented by typed records. Identity returns the field
// that must be present for the record to be usable.
type Identified interface {
	Identity() (field, value string)
}

// StorageConfigInfo describes where a catalog keeps its data.
type StorageConfigInfo struct {
	StorageType      string   `json:"storageType"`
	AllowedLocations []string `json:"allowedLocations,omitempty"`
}

type CatalogRecord struct {
	Name                string            `json:"name"`
	Type                string            `json:"type"`
	Properties          map[string]string `json:"properties,omitempty"`
	StorageConfigInfo   StorageConfigInfo `json:"storageConfigInfo"`
	CreateTimestamp     json.Number       `json:"createTimestamp,omitempty"`
	LastUpdateTimestamp json.Number       `json:"lastUpdateTimestamp,omitempty"`
	EntityVersion       json.Number       `json:"entityVersion,omitempty"`
}

func (c CatalogRecord) Identity() (string, string) { return "name", c.Name }

// DefaultBaseLocation returns the catalog's default-base-location property.
func (c CatalogRecord) DefaultBaseLocation() string {
	return c.Properties["default-base-location"]
}

type PrincipalRecord struct {
	Name                string            `json:"name"`
	ClientID            string            `json:"clientId"`
	Properties          map[string]string `json:"properties,omitempty"`
	CreateTimestamp     json.Number       `json:"createTimestamp,omitempty"`
	LastUpdateTimestamp json.Number       `json:"lastUpdateTimestamp,omitempty"`
	EntityVersion       json.Number       `json:"entityVersion,omitempty"`
}

func (p PrincipalRecord) Identity() (string, string) { return "name", p.Name }

// RoleRecord is a principal-role or a catalog-role.
type RoleRecord struct {
	Name                string            `json:"name"`
	Federated           bool              `json:"federated,omitempty"`
	Properties          map[string]string `json:"properties,omitempty"`
	CreateTimestamp     json.Number       `json:"createTimestamp,omitempty"`
	LastUpdateTimestamp json.Number       `json:"lastUpdateTimestamp,omitempty"`
	EntityVersion       json.Number       `json:"entityVersion,omitempty"`
}

func (r RoleRecord) Identity() (string, string) { return "name", r.Name }

// GrantRecord is one privilege held by a catalog-role.
type GrantRecord struct {
	Type      string   `json:"type"`
	Privilege string   `json:"privilege"`
	Namespace []string `json:"namespace,omitempty"`
	TableName string   `json:"tableName,omitempty"`
	ViewName  string   `json:"viewName,omitempty"`
}

func (g GrantRecord) Identity() (string, string) { return "privilege", g.Privilege }

// CredentialsRecord is printed by principal create and rotate-credentials.
type CredentialsRecord struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

func (c CredentialsRecord) Identity() (string, string) { return "clientId", c.ClientID }

// UnmarshalJSON accepts both the bare credentials object and the
// {"principal": ..., "credentials": {...}} envelope.
func (c *CredentialsRecord) UnmarshalJSON(data []byte) error {
	type plain CredentialsRecord
	var envelope struct {
		Credentials *plain `json:"credentials"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if envelope.Credentials != nil {
		*c = CredentialsRecord(*envelope.Credentials)
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = CredentialsRecord(p)
	return nil
}

// Decode converts generic records into typed ones. A record whose
// identifying field is missing means the client's output format changed,
// and fails the whole call like a malformed line would.
func Decode[T Identified](records []Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for i, r := range records {
		raw, err := r.marshal()
		if err != nil {
			return nil, errors.Wrap(errors.ParseFailed, fmt.Sprintf("record %d", i+1), err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, errors.Wrap(errors.ParseFailed, fmt.Sprintf("record %d has an unexpected shape", i+1), err)
		}
		if field, value := v.Identity(); value == "" {
			return nil, errors.New(errors.ParseFailed, fmt.Sprintf("record %d has no %q field", i+1, field))
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeLines is ParseLines followed by Decode.
func DecodeLines[T Identified](stdout string) ([]T, error) {
	records, err := ParseLines(stdout)
	if err != nil {
		return nil, err
	}
	return Decode[T](records)
}
