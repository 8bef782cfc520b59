// Package migrations embeds the SQL schema applied by golang-migrate when the
// Postgres session store is enabled.
package migrations

import "embed"

// FS holds the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
