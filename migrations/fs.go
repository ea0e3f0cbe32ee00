// Package migrations embeds the SQL schema migrations applied by goose.
package migrations

import "embed"

// FS holds the versioned migration scripts. Each step is additive only:
// it creates a missing table or index and is safe to run against a
// database that already contains rows from an earlier schema version.
//
//go:embed *.sql
var FS embed.FS
