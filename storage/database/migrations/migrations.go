// Package migrations embeds the goose SQL migrations. They run on both Postgres and SQLite.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
