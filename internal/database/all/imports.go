// Package all wires every built-in engine dialect into the database
// registry. Importing it (normally as a blank import from the entry point)
// runs each engine package's init, which registers its dialect. Binaries
// that only need a subset of engines can import the individual packages
// instead.
package all

import (
	_ "dbetl/internal/database/mssql"
	_ "dbetl/internal/database/mysql"
	_ "dbetl/internal/database/postgres"
	_ "dbetl/internal/database/sqlite"
)
