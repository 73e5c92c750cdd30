// Package migrations embeds the numbered SQL files applied by pkg/database
package migrations

import "embed"

// FS holds every NNN_name.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
