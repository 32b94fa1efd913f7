// Package migrations embeds the SQL migration files for the poslite database.
package migrations

import "embed"

// FS holds the embedded migration files, applied in lexical order.
//
//go:embed *.up.sql
var FS embed.FS
