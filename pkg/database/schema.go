package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create every table used by the service. Each statement is
// idempotent so EnsureSchema can run on every start; prefer migrations once
// the schema starts evolving.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS phone_types (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS address_types (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS education_types (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS experience_types (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS candidates (
		id BIGSERIAL PRIMARY KEY,
		personal_id TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		second_name TEXT NOT NULL DEFAULT '',
		first_surname TEXT NOT NULL,
		second_surname TEXT NOT NULL DEFAULT '',
		resume_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_emails (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		is_primary BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_phones (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		phone TEXT NOT NULL,
		type_id BIGINT NOT NULL REFERENCES phone_types(id),
		is_primary BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_addresses (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		address TEXT NOT NULL,
		type_id BIGINT NOT NULL REFERENCES address_types(id),
		is_primary BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_educations (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		institution TEXT NOT NULL,
		degree TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE,
		type_id BIGINT NOT NULL REFERENCES education_types(id),
		CHECK (end_date IS NULL OR end_date >= start_date)
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_experiences (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		company TEXT NOT NULL,
		position TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE,
		description TEXT NOT NULL DEFAULT '',
		type_id BIGINT NOT NULL REFERENCES experience_types(id),
		CHECK (end_date IS NULL OR end_date >= start_date)
	)`,
	`CREATE TABLE IF NOT EXISTS stages (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_stage_history (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		stage_id BIGINT NOT NULL REFERENCES stages(id),
		notes VARCHAR(500),
		changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// at most one primary row per candidate and contact kind
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_candidate_emails_primary ON candidate_emails (candidate_id) WHERE is_primary`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_candidate_phones_primary ON candidate_phones (candidate_id) WHERE is_primary`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_candidate_addresses_primary ON candidate_addresses (candidate_id) WHERE is_primary`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_emails_candidate ON candidate_emails (candidate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_phones_candidate ON candidate_phones (candidate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_addresses_candidate ON candidate_addresses (candidate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_educations_candidate ON candidate_educations (candidate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_experiences_candidate ON candidate_experiences (candidate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_stage_history_candidate ON candidate_stage_history (candidate_id, changed_at DESC)`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db sqlx.ExecerContext) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
