// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/logging"
	"polarisdesk/cli/internal/plan"
)

var (
	applyFile   string
	applyDryRun bool
)

var applyCmd = &cobra.Command{
	Use:   "apply -f PLAN",
	Short: "Apply a YAML plan of catalog, principal and role changes",
	Long: `apply runs the steps of a plan file in order. The first failing step stops
the run; steps applied before it are kept. Credentials issued for new or
rotated principals are printed at the end.`,
	Example: `  steps:
    - resource: catalogs
      action: create
      name: sales
      type: INTERNAL
      storage_type: FILE
      default_base_location: file:///tmp/sales
    - resource: catalog-roles
      action: grant
      name: reader
      catalog: sales
      principal_role: analysts`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(applyFile)
		if err != nil {
			pterm.Error.Println(logging.PresentError("cannot use plan "+applyFile, err))
			return errSilent{err}
		}
		if applyDryRun {
			for i, s := range p.Steps {
				pterm.Info.Printfln("%d. %s", i+1, s)
			}
			done("Plan is valid (%d steps)", len(p.Steps))
			return nil
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		res, err := plan.Run(cmd.Context(), a.console, a.conn, p, func(i int, s plan.Step, err error) {
			if err == nil {
				pterm.Success.Printfln("%d/%d %s", i+1, len(p.Steps), s)
			}
		})
		showIssuedCredentials(a, res)

		var stepErr *plan.StepError
		if errors.As(err, &stepErr) {
			return fail(fmt.Sprintf("apply step %d (%s)", stepErr.Index+1, stepErr.Step), stepErr.Err)
		}
		if err != nil {
			return err
		}
		done("Applied %d steps", res.Applied)
		return nil
	},
}

func showIssuedCredentials(a *app, res plan.Result) {
	if len(res.Credentials) == 0 {
		return
	}
	names := make([]string, 0, len(res.Credentials))
	for name := range res.Credentials {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_ = showCredentials(a, name, res.Credentials[name])
	}
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "plan file (YAML)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "validate the plan and list its steps without running them")
	_ = applyCmd.MarkFlagRequired("file")
}
