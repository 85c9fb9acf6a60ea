// Package migrations carries the marketplace schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
