package db

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// getMigrationsFS returns the embedded migrations as a filesystem rooted at
// the migration files themselves.
func getMigrationsFS() (fs.FS, error) {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return sub, nil
}
