// AngelaMos | 2026
// migrations.go

// Package migrations embeds the goose SQL migrations applied at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
