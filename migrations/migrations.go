// Package migrations embeds the postgres schema migrations so the migrate
// command and integration tests can apply them without the source tree.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
