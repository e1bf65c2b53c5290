// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"polarisdesk/cli/internal/console"
	"polarisdesk/cli/internal/resource"
	"polarisdesk/cli/internal/response"
)

var catalogColumns = []column[response.CatalogRecord]{
	{"NAME", func(c response.CatalogRecord) string { return c.Name }},
	{"TYPE", func(c response.CatalogRecord) string { return c.Type }},
	{"STORAGE", func(c response.CatalogRecord) string { return c.StorageConfigInfo.StorageType }},
	{"BASE LOCATION", func(c response.CatalogRecord) string { return c.DefaultBaseLocation() }},
	{"ALLOWED LOCATIONS", func(c response.CatalogRecord) string {
		return strings.Join(c.StorageConfigInfo.AllowedLocations, ", ")
	}},
}

var catalogsCmd = &cobra.Command{
	Use:     "catalogs",
	Aliases: []string{"catalog"},
	Short:   "Manage catalogs",
}

var catalogsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		catalogs, err := a.set.Catalogs.List(cmd.Context(), a.conn)
		if err != nil {
			return fail("list catalogs", err)
		}
		return render(a, catalogs, catalogColumns)
	},
}

var catalogsGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Show one catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		c, err := a.set.Catalogs.Get(cmd.Context(), a.conn, args[0])
		if err != nil {
			return fail("get catalog "+args[0], err)
		}
		return renderOne(a, "Catalog", c, catalogColumns)
	},
}

var newCatalog resource.CatalogSpec

var catalogsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a catalog",
	Example: `  polarisdesk catalogs create sales --storage-type FILE \
    --default-base-location file:///var/lib/polaris/sales`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		spec := newCatalog
		spec.Name = args[0]
		if err := a.console.CreateCatalog(cmd.Context(), a.conn, spec); err != nil {
			return fail("create catalog "+spec.Name, err)
		}
		done("Catalog %s created", spec.Name)
		return showRefreshed(a, console.PartCatalogs)
	},
}

var catalogsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.console.DeleteCatalog(cmd.Context(), a.conn, args[0]); err != nil {
			return fail("delete catalog "+args[0], err)
		}
		done("Catalog %s deleted", args[0])
		return showRefreshed(a, console.PartCatalogs)
	},
}

func init() {
	rootCmd.AddCommand(catalogsCmd)
	catalogsCmd.AddCommand(catalogsListCmd, catalogsGetCmd, catalogsCreateCmd, catalogsDeleteCmd)

	f := catalogsCreateCmd.Flags()
	f.StringVar(&newCatalog.Type, "type", "INTERNAL", "catalog type (INTERNAL or EXTERNAL)")
	f.StringVar(&newCatalog.StorageType, "storage-type", "", "storage type (S3, GCS, AZURE or FILE)")
	f.StringVar(&newCatalog.DefaultBaseLocation, "default-base-location", "", "default base location URI")
	f.StringArrayVar(&newCatalog.AllowedLocations, "allowed-location", nil, "additional allowed location (repeatable)")
	_ = catalogsCreateCmd.MarkFlagRequired("storage-type")
	_ = catalogsCreateCmd.MarkFlagRequired("default-base-location")
}
