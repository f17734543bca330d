// Package migrations holds the versioned schema of the SQLite store.
// Files are named NNN_description.up.sql and applied in version order.
package migrations

import "embed"

// FS contains the migration files.
//
//go:embed *.sql
var FS embed.FS
