// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"polarisdesk/cli/internal/dsn"
)

// Schema creates the journal table. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS polarisdesk_command_audit (
	id          uuid PRIMARY KEY,
	resource    text NOT NULL,
	operation   text NOT NULL,
	command     text NOT NULL,
	succeeded   boolean NOT NULL,
	error       text,
	duration_ms bigint NOT NULL,
	created_at  timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS polarisdesk_command_audit_created_at_idx
	ON polarisdesk_command_audit (created_at DESC);
`

// Postgres is a Journal backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Open connects to the database named by rawDSN and pings it.
func Open(ctx context.Context, rawDSN string) (*Postgres, error) {
	normalized, err := dsn.Parse(rawDSN)
	if err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(normalized)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// EnsureSchema creates the journal table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, Schema)
	return err
}

// Record inserts one entry.
func (p *Postgres) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO polarisdesk_command_audit (id, resource, operation, command, succeeded, error, duration_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, e.ID, e.Resource, e.Operation, e.Command, e.Succeeded, nullIfEmpty(e.Error), e.Duration.Milliseconds(), e.CreatedAt)
	return err
}

// Recent returns up to limit entries, newest first.
func (p *Postgres) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, resource, operation, command, succeeded, COALESCE(error,''), duration_ms, created_at
		FROM polarisdesk_command_audit
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.Resource, &e.Operation, &e.Command, &e.Succeeded, &e.Error, &ms, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
