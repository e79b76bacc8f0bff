// Package migrations holds the SQLite schema migrations compiled into the binary.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
