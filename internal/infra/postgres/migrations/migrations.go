package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema migrations, registered in file-name order.
var Migrations = migrate.NewMigrations()
