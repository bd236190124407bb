// Package db persists sampling plans and runs in SQLite and exposes the
// migration and admin tooling for that database.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// OpenDB opens the SQLite database at path without touching the schema.
// Use this when migrations will manage the schema (e.g. the migrate CLI).
func OpenDB(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; serialize access through one
	// connection instead of surfacing SQLITE_BUSY to callers.
	sqldb.SetMaxOpenConns(1)

	if _, err := sqldb.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &DB{sqldb}, nil
}

// NewDB opens the database and applies any pending embedded migrations.
// This is the normal entry point for the server and CLI commands.
func NewDB(path string) (*DB, error) {
	database, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		database.Close()
		return nil, err
	}

	if err := database.MigrateUp(migrationsFS); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return database, nil
}

// OpenCurrentDB opens the database and verifies the schema matches the
// embedded migrations without applying anything. CLI commands that merely
// read and write data use this so the schema is only ever changed through
// the migrate commands.
func OpenCurrentDB(path string) (*DB, error) {
	database, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		database.Close()
		return nil, err
	}

	if outdated, err := database.CheckAndPromptMigrations(migrationsFS); err != nil {
		database.Close()
		return nil, err
	} else if outdated {
		database.Close()
		return nil, fmt.Errorf("database schema is out of date; run 'auditsample migrate up'")
	}

	return database, nil
}
