// Package mysql registers the "mysql" dialect backed by go-sql-driver.
//
// Identifiers are quoted with backticks: MySQL only honors double quotes
// under ANSI_QUOTES, which cannot be assumed on arbitrary servers.
package mysql

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"dbetl/internal/database"
)

func init() {
	database.Register("mysql", database.Dialect{
		Name:        "mysql",
		Driver:      "mysql",
		DefaultPort: 3306,
		Placeholder: func(int) string { return "?" },
		QuoteIdent:  quoteBacktick,
		CreateTable: func(table, columns string) string {
			return "CREATE TABLE IF NOT EXISTS " + table + " (" + columns + ")"
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
		port = 3306
	}
	user := p.User
	if user == "" {
		user = "root"
	}

	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = p.Database
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func quoteBacktick(ident string) string {
	out := make([]byte, 0, len(ident)+2)
	out = append(out, '`')
	for i := 0; i < len(ident); i++ {
		if ident[i] == '`' {
			out = append(out, '`')
		}
		out = append(out, ident[i])
	}
	return string(append(out, '`'))
}
