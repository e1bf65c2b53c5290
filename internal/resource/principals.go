// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package resource

import (
	"context"

	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/config"
	"polarisdesk/cli/internal/response"
)

// DefaultPrincipalType is used when the caller does not name one.
const DefaultPrincipalType = "SERVICE"

type Principals struct{ client *Client }

func (p *Principals) List(ctx context.Context, conn config.Connection) ([]response.PrincipalRecord, error) {
	records, err := p.client.List(ctx, conn, "")
	if err != nil {
		return nil, err
	}
	return response.Decode[response.PrincipalRecord](records)
}

func (p *Principals) Get(ctx context.Context, conn config.Connection, name string) (response.PrincipalRecord, error) {
	return getOne[response.PrincipalRecord](ctx, p.client, conn, name)
}

// Create adds a principal and returns the credentials the service issued.
// They are shown once and cannot be fetched again.
func (p *Principals) Create(ctx context.Context, conn config.Connection, name, principalType string) (response.CredentialsRecord, error) {
	if principalType == "" {
		principalType = DefaultPrincipalType
	}
	stdout, err := p.client.Create(ctx, conn, name, command.Flag{Key: "type", Value: principalType})
	if err != nil {
		return response.CredentialsRecord{}, err
	}
	return firstCredentials(stdout)
}

func (p *Principals) Delete(ctx context.Context, conn config.Connection, name string) error {
	return p.client.Delete(ctx, conn, name)
}

// RotateCredentials replaces the principal's secret and returns the new pair.
func (p *Principals) RotateCredentials(ctx context.Context, conn config.Connection, name string) (response.CredentialsRecord, error) {
	stdout, err := p.client.Do(ctx, conn, command.RotateCredentials, []string{name}, nil)
	if err != nil {
		return response.CredentialsRecord{}, err
	}
	return firstCredentials(stdout)
}

// firstCredentials decodes the client's credential output. Some client
// versions print nothing; that yields a zero record, not an error.
func firstCredentials(stdout string) (response.CredentialsRecord, error) {
	records, err := response.ParseLines(stdout)
	if err != nil || len(records) == 0 {
		return response.CredentialsRecord{}, err
	}
	creds, err := response.Decode[response.CredentialsRecord](records[:1])
	if err != nil {
		return response.CredentialsRecord{}, err
	}
	return creds[0], nil
}
