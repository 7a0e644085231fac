// Package migrations holds the PostgreSQL schema and its runner.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
