// Package migrations holds the versioned PostgreSQL schema applied by cmd/migrate.
package migrations

import "embed"

// FS embeds the up/down migration pairs
//
//go:embed *.sql
var FS embed.FS
