// Package migrations embeds the goose schema migrations for every supported
// database driver. Each dialect keeps its files in its own directory.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS
