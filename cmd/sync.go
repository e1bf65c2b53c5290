// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/console"
	"polarisdesk/cli/internal/logging"
	"polarisdesk/cli/internal/snapshot"
)

var syncGrantsFor []string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Load all catalogs, principals and role assignments",
	Long: `sync lists every catalog and principal, then the catalog-roles of each
catalog and the principal-roles of each principal. A failure for one catalog
or principal is reported and does not stop the others.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if a.renderer != nil {
			a.renderer.Start()
		}
		refreshErr := a.console.Refresh(ctx, a.conn)
		grantErrs := make(map[string]error)
		for _, catalog := range syncGrantsFor {
			if _, err := a.console.CatalogGrants(ctx, a.conn, catalog); err != nil {
				grantErrs[catalog] = err
				refreshErr = errors.Join(refreshErr, fmt.Errorf("grants of %s: %w", catalog, err))
			}
		}
		if a.renderer != nil {
			a.renderer.Stop()
		}

		st := a.console.State()
		if a.output == "json" {
			if err := json.NewEncoder(stdout).Encode(syncDocument(st, grantErrs)); err != nil {
				return err
			}
			if refreshErr != nil {
				return errSilent{refreshErr}
			}
			return nil
		}

		pterm.DefaultSection.Println("Catalogs → catalog-roles")
		if err := renderAssignments(st.CatalogRoleAssignments); err != nil {
			return err
		}
		pterm.DefaultSection.Println("Principals → principal-roles")
		if err := renderAssignments(st.PrincipalRoleAssignments); err != nil {
			return err
		}
		for _, catalog := range syncGrantsFor {
			if err, failed := grantErrs[catalog]; failed {
				logging.FprintFailure(stdout, "load grants of "+catalog, err)
				continue
			}
			pterm.DefaultSection.Printfln("Grants in %s", catalog)
			if err := renderAssignments(st.Grants[catalog]); err != nil {
				return err
			}
		}

		for _, part := range st.FailedParts() {
			pterm.Error.Printfln("%s could not be loaded: %s", part, firstLine(st.Errors[part].Error()))
		}
		if refreshErr != nil {
			return errSilent{refreshErr}
		}
		return nil
	},
}

func renderAssignments(s snapshot.Snapshot) error {
	if len(s.Entries) == 0 {
		pterm.Info.Println("Nothing to show")
		return nil
	}
	data := pterm.TableData{{"PARENT", "CHILDREN"}}
	for _, e := range s.Entries {
		if e.Err != nil {
			data = append(data, []string{e.Parent, pterm.Red("failed: " + firstLine(e.Err.Error()))})
			continue
		}
		data = append(data, []string{e.Parent, strings.Join(s.Names(e.Parent), ", ")})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

type syncOutput struct {
	CatalogRoles   map[string][]string            `json:"catalogRoles"`
	PrincipalRoles map[string][]string            `json:"principalRoles"`
	Grants         map[string]map[string][]string `json:"grants,omitempty"`
	Errors         map[string]string              `json:"errors,omitempty"`
}

func syncDocument(st console.State, grantErrs map[string]error) syncOutput {
	out := syncOutput{
		CatalogRoles:   st.CatalogRoleAssignments.Mapping(),
		PrincipalRoles: st.PrincipalRoleAssignments.Mapping(),
		Errors:         map[string]string{},
	}
	if len(st.Grants) > 0 {
		out.Grants = make(map[string]map[string][]string, len(st.Grants))
		for catalog, g := range st.Grants {
			out.Grants[catalog] = g.Mapping()
		}
	}
	for part, err := range st.Errors {
		out.Errors[string(part)] = err.Error()
	}
	for catalog, err := range grantErrs {
		out.Errors["grants/"+catalog] = err.Error()
	}
	for _, s := range []snapshot.Snapshot{st.CatalogRoleAssignments, st.PrincipalRoleAssignments} {
		for _, e := range s.Failed() {
			out.Errors[s.View+"/"+e.Parent] = e.Err.Error()
		}
	}
	return out
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringArrayVar(&syncGrantsFor, "grants", nil, "also load the privileges of each catalog-role in this catalog (repeatable)")
}
