// Package postgres registers the "postgres" dialect backed by the pgx
// stdlib driver. "postgresql" is accepted as an alias, matching the
// external configuration contract.
package postgres

import (
	"net"
	"net/url"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"dbetl/internal/database"
)

func init() {
	d := database.Dialect{
		Name:        "postgres",
		Driver:      "pgx",
		DefaultPort: 5432,
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		QuoteIdent:  database.QuoteDouble,
		CreateTable: func(table, columns string) string {
			return "CREATE TABLE IF NOT EXISTS " + table + " (" + columns + ")"
		},
		BuildDSN: buildDSN,
	}
	database.Register("postgres", d)
	database.Register("postgresql", d)
}

func buildDSN(p database.Params) (string, error) {
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	port := p.Port
	if port == 0 {
		port = 5432
	}
	user := p.User
	if user == "" {
		user = "postgres"
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, p.Password),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + p.Database,
	}
	return u.String(), nil
}
