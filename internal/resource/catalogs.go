// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package resource

import (
	"context"

	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/response"
)

// CatalogSpec holds the attributes of a new catalog.
type CatalogSpec struct {
	Name                string
	Type                string
	StorageType         string
	DefaultBaseLocation string
	AllowedLocations    []string
}

func (s CatalogSpec) flags() []command.Flag {
	flags := []command.Flag{
		{Key: "type", Value: s.Type},
		{Key: "storage-type", Value: s.StorageType},
		{Key: "default-base-location", Value: s.DefaultBaseLocation},
	}
	for _, loc := range s.AllowedLocations {
		flags = append(flags, command.Flag{Key: "allowed-location", Value: loc})
	}
	return flags
}

type Catalogs struct{ client *Client }

func (c *Catalogs) List(ctx context.Context, conn config.Connection) ([]response.CatalogRecord, error) {
	records, err := c.client.List(ctx, conn, "")
	if err != nil {
		return nil, err
	}
	return response.Decode[response.CatalogRecord](records)
}

func (c *Catalogs) Get(ctx context.Context, conn config.Connection, name string) (response.CatalogRecord, error) {
	return getOne[response.CatalogRecord](ctx, c.client, conn, name)
}

func (c *Catalogs) Create(ctx context.Context, conn config.Connection, spec CatalogSpec) error {
	_, err := c.client.Create(ctx, conn, spec.Name, spec.flags()...)
	return err
}

func (c *Catalogs) Delete(ctx context.Context, conn config.Connection, name string) error {
	return c.client.Delete(ctx, conn, name)
}

func getOne[T response.Identified](ctx context.Context, client *Client, conn config.Connection, name string, named ...command.Flag) (T, error) {
	var zero T
	record, err := client.Get(ctx, conn, name, named...)
	if err != nil {
		return zero, err
	}
	typed, err := response.Decode[T]([]response.Record{record})
	if err != nil {
		return zero, err
	}
	return typed[0], nil
}
