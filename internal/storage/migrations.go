package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// dialect holds the per-database migration set and bookkeeping SQL.
type dialect struct {
	name         string
	migrations   []Migration
	createTable  string
	recordInsert string
}

var sqliteDialect = dialect{
	name: "sqlite",
	migrations: []Migration{
		{
			Version: 1,
			Name:    "project_requests",
			Up: `
				CREATE TABLE IF NOT EXISTS project_requests (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					project_type TEXT NOT NULL,
					industry TEXT NOT NULL,
					has_existing_website INTEGER NOT NULL DEFAULT 0,
					existing_website_url TEXT,
					primary_goal TEXT NOT NULL,
					target_audience TEXT NOT NULL,
					features TEXT NOT NULL DEFAULT '[]',
					description TEXT NOT NULL DEFAULT '',
					budget_range TEXT NOT NULL,
					timeline TEXT NOT NULL,
					contact_name TEXT NOT NULL,
					contact_email TEXT NOT NULL,
					contact_phone TEXT,
					preferred_contact TEXT NOT NULL,
					consent INTEGER NOT NULL DEFAULT 0
				);

				CREATE INDEX IF NOT EXISTS idx_project_requests_created ON project_requests(created_at DESC);
			`,
		},
		{
			Version: 2,
			Name:    "request_flow",
			Up: `
				ALTER TABLE project_requests ADD COLUMN flow TEXT NOT NULL DEFAULT 'full';
			`,
		},
	},
	createTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`,
	recordInsert: "INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
}

var postgresDialect = dialect{
	name: "postgres",
	migrations: []Migration{
		{
			Version: 1,
			Name:    "project_requests",
			Up: `
				CREATE TABLE IF NOT EXISTS project_requests (
					id UUID PRIMARY KEY,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					project_type TEXT NOT NULL,
					industry TEXT NOT NULL,
					has_existing_website BOOLEAN NOT NULL DEFAULT false,
					existing_website_url TEXT,
					primary_goal TEXT NOT NULL,
					target_audience TEXT NOT NULL,
					features TEXT[] NOT NULL DEFAULT '{}',
					description TEXT NOT NULL DEFAULT '',
					budget_range TEXT NOT NULL,
					timeline TEXT NOT NULL,
					contact_name TEXT NOT NULL,
					contact_email TEXT NOT NULL,
					contact_phone TEXT,
					preferred_contact TEXT NOT NULL,
					consent BOOLEAN NOT NULL DEFAULT false
				);

				CREATE INDEX IF NOT EXISTS idx_project_requests_created ON project_requests(created_at DESC);
			`,
		},
		{
			Version: 2,
			Name:    "request_flow",
			Up: `
				ALTER TABLE project_requests ADD COLUMN IF NOT EXISTS flow TEXT NOT NULL DEFAULT 'full';
			`,
		},
	},
	createTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL
		)
	`,
	recordInsert: "INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)",
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB, d dialect) error {
	if db == nil {
		return fmt.Errorf("database not open")
	}

	if _, err := db.Exec(d.createTable); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range d.migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}

		_, err = tx.Exec(m.Up)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("execute %s migration %d (%s): %w", d.name, m.Version, m.Name, err)
		}

		_, err = tx.Exec(d.recordInsert, m.Version, m.Name, time.Now().UTC())
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
