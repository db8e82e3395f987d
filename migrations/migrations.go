// Package migrations embeds the versioned PostgreSQL schema applied by
// cmd/migrate. SQLite databases are created with gorm AutoMigrate instead.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files
//
//go:embed *.sql
var FS embed.FS
