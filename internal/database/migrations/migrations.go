// Package migrations holds the versioned PostgreSQL schema of the market.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry applied by the database client and cmd/db.
var Migrations = migrate.NewMigrations() //nolint:gochecknoglobals // -
