// Package postgres stores plans and leads in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		country       TEXT NOT NULL,
		city          TEXT NOT NULL DEFAULT '',
		lifestyle     TEXT NOT NULL,
		stay_length   INTEGER NOT NULL,
		housing_type  TEXT NOT NULL,
		traveler_type TEXT NOT NULL,
		work_style    TEXT NOT NULL,
		rent          BIGINT NOT NULL,
		food          BIGINT NOT NULL,
		transport     BIGINT NOT NULL,
		utilities     BIGINT NOT NULL,
		internet      BIGINT NOT NULL,
		health        BIGINT NOT NULL,
		fun           BIGINT NOT NULL,
		total_cost    BIGINT NOT NULL,
		confidence    TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id              TEXT PRIMARY KEY,
		email           TEXT NOT NULL,
		consent         BOOLEAN NOT NULL,
		country         TEXT NOT NULL,
		city            TEXT NOT NULL DEFAULT '',
		lifestyle       TEXT NOT NULL,
		stay_length     INTEGER NOT NULL,
		housing_type    TEXT NOT NULL,
		traveler_type   TEXT NOT NULL,
		work_style      TEXT NOT NULL,
		total_cost      BIGINT NOT NULL,
		breakdown       JSONB NOT NULL,
		identifier_hash TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_user_created ON plans (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created ON leads (created_at DESC)`,
}

// DB wraps a connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and creates the tables if needed.
func Open(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &DB{pool: pool}, nil
}

// Close releases every pooled connection.
func (d *DB) Close() {
	d.pool.Close()
}

// Plans returns the plan store backed by d.
func (d *DB) Plans() *PlanStore {
	return &PlanStore{pool: d.pool}
}

// Leads returns the lead store backed by d.
func (d *DB) Leads() *LeadStore {
	return &LeadStore{pool: d.pool}
}
