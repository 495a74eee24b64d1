// Package assets embeds the default word catalog and the SQL migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed catalog.yaml migrations/*.sql
var FS embed.FS

// Catalog returns the embedded default catalog YAML.
func Catalog() ([]byte, error) {
	return FS.ReadFile("catalog.yaml")
}

// Migrations returns the migration files rooted at their directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "migrations")
}
