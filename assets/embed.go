// Package assets embeds the SQL migrations and HTML templates shipped with the server.
package assets

import "embed"

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var Migrations embed.FS

//go:embed templates/*.html templates/partials/*.html
var Templates embed.FS

// Migration directories inside Migrations, per storage driver.
const (
	PostgresMigrations = "migrations/postgres"
	SQLiteMigrations   = "migrations/sqlite"
)
