// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package plan reads a YAML list of console mutations and applies it step
// by step. Each step goes through the console, so every successful step
// resyncs the state it touched before the next one starts.
package plan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"polarisdesk/cli/internal/errors"
	"polarisdesk/cli/internal/resource"
)

// Plan is an ordered list of steps.
type Plan struct {
	Steps []Step `yaml:"steps"`
}

// Step is one mutation. Which fields are required depends on Resource and
// Action; see Validate.
type Step struct {
	Resource string `yaml:"resource"`
	Action   string `yaml:"action"`
	Name     string `yaml:"name,omitempty"`

	// catalogs create
	Type                string   `yaml:"type,omitempty"`
	StorageType         string   `yaml:"storage_type,omitempty"`
	DefaultBaseLocation string   `yaml:"default_base_location,omitempty"`
	AllowedLocations    []string `yaml:"allowed_locations,omitempty"`

	// role assignments and privileges
	Principal     string    `yaml:"principal,omitempty"`
	Catalog       string    `yaml:"catalog,omitempty"`
	PrincipalRole string    `yaml:"principal_role,omitempty"`
	CatalogRole   string    `yaml:"catalog_role,omitempty"`
	Privilege     string    `yaml:"privilege,omitempty"`
	Scope         string    `yaml:"scope,omitempty"`
	Namespace     Namespace `yaml:"namespace,omitempty"`
	Table         string    `yaml:"table,omitempty"`
}

// Namespace accepts either a dotted string ("db.sales") or a list of levels.
type Namespace []string

func (n *Namespace) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" {
			*n = nil
			return nil
		}
		*n = strings.Split(value.Value, ".")
		return nil
	case yaml.SequenceNode:
		var levels []string
		if err := value.Decode(&levels); err != nil {
			return err
		}
		*n = levels
		return nil
	default:
		return fmt.Errorf("line %d: namespace must be a string or a list", value.Line)
	}
}

// String describes the step for progress output.
func (s Step) String() string {
	switch {
	case s.Resource == "privileges":
		return fmt.Sprintf("%s %s %s on %s", s.Resource, s.Action, s.Privilege, s.securable())
	case s.Action == "grant" || s.Action == "revoke":
		return fmt.Sprintf("%s %s %s → %s", s.Resource, s.Action, s.Name, s.grantee())
	default:
		return fmt.Sprintf("%s %s %s", s.Resource, s.Action, s.Name)
	}
}

func (s Step) grantee() string {
	if s.Resource == "principal-roles" {
		return s.Principal
	}
	return s.Catalog + "/" + s.PrincipalRole
}

func (s Step) securable() string {
	parts := []string{s.Catalog}
	parts = append(parts, s.Namespace...)
	if s.Table != "" {
		parts = append(parts, s.Table)
	}
	return strings.Join(parts, ".") + " for " + s.CatalogRole
}

// CatalogSpec converts a catalogs create step.
func (s Step) CatalogSpec() resource.CatalogSpec {
	return resource.CatalogSpec{
		Name:                s.Name,
		Type:                s.Type,
		StorageType:         s.StorageType,
		DefaultBaseLocation: s.DefaultBaseLocation,
		AllowedLocations:    s.AllowedLocations,
	}
}

// PrivilegeSpec converts a privileges step. An empty scope is derived from
// the securable fields that are set.
func (s Step) PrivilegeSpec() resource.PrivilegeSpec {
	scope := resource.Scope(s.Scope)
	if scope == "" {
		switch {
		case s.Table != "":
			scope = resource.TableScope
		case len(s.Namespace) > 0:
			scope = resource.NamespaceScope
		default:
			scope = resource.CatalogScope
		}
	}
	return resource.PrivilegeSpec{
		Scope:       scope,
		Privilege:   s.Privilege,
		Catalog:     s.Catalog,
		CatalogRole: s.CatalogRole,
		Namespace:   s.Namespace,
		Table:       s.Table,
	}
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a plan and validates it. Unknown fields are rejected so a
// typo does not silently drop an attribute.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Wrap(errors.InvalidPlan, "failed to parse plan", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
