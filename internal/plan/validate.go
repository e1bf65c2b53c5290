// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package plan

import (
	"fmt"
	"strings"

	"polarisdesk/cli/internal/errors"
)

// required lists, per resource and action, the fields a step must set.
var required = map[string]map[string][]string{
	"catalogs": {
		"create": {"name", "type", "storage_type", "default_base_location"},
		"delete": {"name"},
	},
	"principals": {
		"create":             {"name"},
		"delete":             {"name"},
		"rotate-credentials": {"name"},
	},
	"principal-roles": {
		"create": {"name"},
		"delete": {"name"},
		"grant":  {"name", "principal"},
		"revoke": {"name", "principal"},
	},
	"catalog-roles": {
		"create": {"name", "catalog"},
		"delete": {"name", "catalog"},
		"grant":  {"name", "catalog", "principal_role"},
		"revoke": {"name", "catalog", "principal_role"},
	},
	"privileges": {
		"grant":  {"privilege", "catalog", "catalog_role"},
		"revoke": {"privilege", "catalog", "catalog_role"},
	},
}

func (s Step) field(name string) string {
	switch name {
	case "name":
		return s.Name
	case "type":
		return s.Type
	case "storage_type":
		return s.StorageType
	case "default_base_location":
		return s.DefaultBaseLocation
	case "principal":
		return s.Principal
	case "catalog":
		return s.Catalog
	case "principal_role":
		return s.PrincipalRole
	case "catalog_role":
		return s.CatalogRole
	case "privilege":
		return s.Privilege
	}
	return ""
}

// Validate checks every step without running anything. The first problem
// is returned as an InvalidPlan error naming the 1-based step.
func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return errors.New(errors.InvalidPlan, "plan has no steps")
	}
	for i, s := range p.Steps {
		if err := s.validate(); err != nil {
			return errors.New(errors.InvalidPlan, fmt.Sprintf("step %d: %s", i+1, err))
		}
	}
	return nil
}

func (s Step) validate() error {
	actions, ok := required[s.Resource]
	if !ok {
		return fmt.Errorf("unknown resource %q", s.Resource)
	}
	fields, ok := actions[s.Action]
	if !ok {
		return fmt.Errorf("%s does not support action %q", s.Resource, s.Action)
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(s.field(f)) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s %s requires %s", s.Resource, s.Action, strings.Join(missing, ", "))
	}
	if s.Resource == "privileges" {
		if err := s.PrivilegeSpec().Validate(); err != nil {
			return err
		}
	}
	return nil
}
