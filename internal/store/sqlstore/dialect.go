package sqlstore

import (
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect captures the differences between the supported SQL engines.
// Queries are written with $n placeholders.
type Dialect struct {
	Name       string
	DriverName string
	Schema     string
	positional bool // rewrite $n to ?
}

var Postgres = Dialect{
	Name:       "postgres",
	DriverName: "pgx",
	Schema: `
CREATE TABLE IF NOT EXISTS tasks (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'pending',
    priority    TEXT NOT NULL DEFAULT 'medium',
    due_date    TIMESTAMPTZ NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_created_at_idx ON tasks (created_at DESC);
`,
}

var SQLite = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite3",
	Schema: `
CREATE TABLE IF NOT EXISTS tasks (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'pending',
    priority    TEXT NOT NULL DEFAULT 'medium',
    due_date    TIMESTAMP NULL,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_created_at_idx ON tasks (created_at DESC);
`,
	positional: true,
}

var placeholderRE = regexp.MustCompile(`\$\d+`)

func (d Dialect) rebind(q string) string {
	if !d.positional {
		return q
	}
	return placeholderRE.ReplaceAllString(q, "?")
}
