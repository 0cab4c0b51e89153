// Package migrations embeds booking schema migration files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
