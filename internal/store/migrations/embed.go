package migrations

import "embed"

// FS contains the embedded SQLite migrations for the character store.
//
//go:embed *.sql
var FS embed.FS
