package postgres

import (
	"context"
	"fmt"
)

// schema holds the idempotent table definitions for the audit store. Applied
// at boot; a real migration tool can take over once the schema starts moving.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		slug TEXT NOT NULL,
		access_token TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_slug ON accounts (slug)`,
	`CREATE TABLE IF NOT EXISTS contact_requests (
		id UUID PRIMARY KEY,
		slug TEXT NOT NULL,
		upstream_person_id BIGINT,
		upstream_person_email TEXT NOT NULL,
		raw_upstream_person JSONB NOT NULL,
		survey_response JSONB,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contact_requests_slug ON contact_requests (slug)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		slug TEXT NOT NULL,
		author_id BIGINT NOT NULL,
		author_email TEXT NOT NULL,
		contact_email TEXT NOT NULL,
		raw_upstream_event JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_slug ON events (slug)`,
}

// InitSchema creates the audit tables if they do not exist yet
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	db.logger.Info("database schema initialized")
	return nil
}
