// Package migrations embeds the SQL schema files. They are idempotent and
// applied in lexical order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
