// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"

	"github.com/pterm/pterm"

	"polarisdesk/cli/internal/console"
	"polarisdesk/cli/internal/snapshot"
)

// showRefreshed prints a part of console state after a mutation resynced
// it. A part whose resync failed is reported instead of shown stale.
func showRefreshed(a *app, part console.Part) error {
	st := a.console.State()
	if err, failed := st.Errors[part]; failed {
		if a.output != "json" {
			pterm.Warning.Printfln("%s could not be reloaded: %s", part, firstLine(err.Error()))
		}
		return nil
	}
	switch part {
	case console.PartCatalogs:
		return render(a, st.Catalogs, catalogColumns)
	case console.PartPrincipals:
		return render(a, st.Principals, principalColumns)
	case console.PartPrincipalRoles:
		return render(a, st.PrincipalRoles, roleColumns)
	case console.PartCatalogRoleAssignments:
		return renderSnapshot(a, st.CatalogRoleAssignments)
	case console.PartPrincipalRoleAssignments:
		return renderSnapshot(a, st.PrincipalRoleAssignments)
	}
	return nil
}

// showGrants prints the catalog-role → privileges view of catalog.
func showGrants(a *app, catalog string) error {
	s, ok := a.console.State().Grants[catalog]
	if !ok {
		if a.output != "json" {
			pterm.Warning.Printfln("grants of %s could not be reloaded", catalog)
		}
		return nil
	}
	return renderSnapshot(a, s)
}

func renderSnapshot(a *app, s snapshot.Snapshot) error {
	if a.output == "json" {
		return json.NewEncoder(stdout).Encode(s.Mapping())
	}
	return renderAssignments(s)
}
