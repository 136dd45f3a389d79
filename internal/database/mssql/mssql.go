// Package mssql registers the "mssql" dialect backed by go-mssqldb. SQL
// Server has no CREATE TABLE IF NOT EXISTS; the conditional create is an
// OBJECT_ID guard instead.
package mssql

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"dbetl/internal/database"
)

func init() {
	database.Register("mssql", database.Dialect{
		Name:        "mssql",
		Driver:      "sqlserver",
		DefaultPort: 1433,
		Placeholder: func(n int) string { return "@p" + strconv.Itoa(n) },
		QuoteIdent:  database.QuoteDouble,
		CreateTable: func(table, columns string) string {
			return fmt.Sprintf(
				"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
				table, table, columns,
			)
		},
		BuildDSN: buildDSN,
	})
}

func buildDSN(p database.Params) (string, error) {
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	port := p.Port
	if port == 0 {
		port = 1433
	}

	u := url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(p.User, p.Password),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
	}
	if p.Database != "" {
		q := url.Values{}
		q.Set("database", p.Database)
		u.RawQuery = q.Encode()
	}
	dsn := u.String()

	// Fail fast on malformed DSNs before a session is attempted.
	if _, err := msdsn.Parse(dsn); err != nil {
		return "", fmt.Errorf("mssql dsn: %w", err)
	}
	return dsn, nil
}
