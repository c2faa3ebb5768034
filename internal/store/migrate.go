package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// MigrateSQLite creates the applications table once, tracked by
// PRAGMA user_version.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS applications (
  id TEXT PRIMARY KEY,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'Applied',
  notes TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`); err != nil {
		return fmt.Errorf("create applications: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_applications_created_at
ON applications(created_at DESC);
`); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	// user_version does not take bound parameters
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// MigratePostgres creates the table when it does not exist yet. Hosted
// deployments normally manage the schema themselves.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS applications (
  id TEXT PRIMARY KEY,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'Applied',
  notes TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  seq BIGSERIAL
);
`); err != nil {
		return fmt.Errorf("create applications: %w", err)
	}
	// Tables created before seq existed, or by the hosted dashboard.
	if _, err := db.ExecContext(ctx, `ALTER TABLE applications ADD COLUMN IF NOT EXISTS seq BIGSERIAL;`); err != nil {
		return fmt.Errorf("add seq column: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_applications_created_at
ON applications(created_at DESC);
`); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}
