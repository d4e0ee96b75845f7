// Package migrations embeds the goose SQL migrations shipped with the server.
package migrations

import "embed"

// FS holds every *.sql migration file.
//
//go:embed *.sql
var FS embed.FS
