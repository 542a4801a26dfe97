// Package migrations holds the entry database schema as numbered
// NNN_name.up.sql / NNN_name.down.sql pairs, applied in order on open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
