// Package migrations embeds the SQL migration files for the cache
// snapshot table so the goose programmatic API can apply them from
// tests and from server bootstrap without a filesystem path.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose.UpFS / goose.DownToFS.
//
//go:embed *.sql
var FS embed.FS
