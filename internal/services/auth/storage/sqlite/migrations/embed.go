// Package migrations embeds auth schema migration files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
