// Package migrations embeds the SQL schema of the hosted backend.
package migrations

import "embed"

// FS holds goose migration files.
//
//go:embed *.sql
var FS embed.FS
