package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS validation_runs (
	run_id           TEXT PRIMARY KEY,
	task             TEXT NOT NULL,
	status           TEXT NOT NULL,
	model            TEXT,
	certificate_file TEXT,
	policy_files     TEXT[],
	report           JSONB NOT NULL,
	diagnostics      JSONB,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS validation_records (
	id           BIGSERIAL PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES validation_runs(run_id) ON DELETE CASCADE,
	field        TEXT NOT NULL,
	cert_value   TEXT,
	policy_value TEXT,
	status       TEXT NOT NULL,
	match_type   TEXT
);

CREATE INDEX IF NOT EXISTS validation_records_run_idx ON validation_records(run_id);
`

// EnsureSchema creates the run tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
