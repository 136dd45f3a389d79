// Package sqlite registers the "sqlite" dialect backed by the pure-Go
// modernc driver. SQLite has no network port; the database param is a file
// path and defaults to an in-memory database.
package sqlite

import (
	"dbetl/internal/database"

	_ "modernc.org/sqlite"
)

func init() {
	database.Register("sqlite", database.Dialect{
		Name:        "sqlite",
		Driver:      "sqlite",
		Placeholder: func(int) string { return "?" },
		QuoteIdent:  database.QuoteDouble,
		CreateTable: func(table, columns string) string {
			return "CREATE TABLE IF NOT EXISTS " + table + " (" + columns + ")"
		},
		BuildDSN: func(p database.Params) (string, error) {
			if p.Database == "" {
				return ":memory:", nil
			}
			return p.Database, nil
		},
	})
}
