package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_tables.sql
var createTablesSQL string

//go:embed 0002_seed_content.sql
var seedContentSQL string

var Migrations = migrate.NewMigrations()
