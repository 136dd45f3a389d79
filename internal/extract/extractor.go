// Package extract runs a single read query against a source connection and
// materializes the result set with its column names for the loader.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"dbetl/internal/database"
)

// ErrNoColumns is returned when a query succeeds but the engine yields no
// column metadata; rows without column identity are unusable downstream.
var ErrNoColumns = errors.New("no column metadata for extracted rows")

// InvalidQueryError reports a statement that is not a read query.
type InvalidQueryError struct {
	Query string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("extraction query must begin with SELECT: %q", e.Query)
}

// Conn is the slice of the database connection the extractor needs.
// *database.Connection satisfies it.
type Conn interface {
	Connected() bool
	Connect(ctx context.Context) error
	Execute(ctx context.Context, query string, args ...any) (*database.Result, error)
}

// Extractor materializes rows from a source connection. The zero value is
// not usable; construct with New.
type Extractor struct {
	conn Conn
	log  logrus.FieldLogger

	rows    [][]any
	columns []string
}

func New(conn Conn, log logrus.FieldLogger) *Extractor {
	return &Extractor{conn: conn, log: log.WithField("component", "extractor")}
}

// Extract runs the given read query and stores the resulting rows and
// column names. The connection is opened lazily if needed. The query must
// classify as a read query; otherwise the connection is never touched.
func (e *Extractor) Extract(ctx context.Context, query string, params ...any) error {
	if !database.IsReadQuery(query) {
		return &InvalidQueryError{Query: query}
	}

	if !e.conn.Connected() {
		if err := e.conn.Connect(ctx); err != nil {
			return err
		}
	}

	res, err := e.conn.Execute(ctx, query, params...)
	if err != nil {
		return err
	}
	if len(res.Columns) == 0 {
		e.log.Warn("engine returned no column metadata")
		return ErrNoColumns
	}

	e.rows = res.Rows
	e.columns = res.Columns
	e.log.WithFields(logrus.Fields{
		"rows":    len(e.rows),
		"columns": len(e.columns),
	}).Info("extraction complete")
	return nil
}

// Data returns the rows and column names of the last successful extraction,
// or (nil, nil) if none has happened yet.
func (e *Extractor) Data() ([][]any, []string) {
	return e.rows, e.columns
}
