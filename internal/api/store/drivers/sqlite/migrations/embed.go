// Package migrations embeds the schema migration files so a deployed binary
// carries its own schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
