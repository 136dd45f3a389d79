// Package load writes extracted rows into a destination table. It resolves
// the target columns (mapping, positional rename, or identity), partitions
// the projected rows into fixed-size batches, and commits each batch in its
// own transaction.
//
// There is deliberately no cross-batch atomicity: a batch that commits stays
// committed even when a later batch fails, so an aborted load leaves the
// target table partially populated. LoadError carries the committed row
// count so callers can surface that state.
package load

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"dbetl/internal/database"
)

// DefaultBatchSize is used when a load is requested with a non-positive
// batch size.
const DefaultBatchSize = 100

// ColumnDef is one ordered column definition for table creation. Type is a
// raw SQL type expression and is passed through verbatim.
type ColumnDef struct {
	Name string
	Type string
}

// Options carries the per-load settings resolved from the pipeline config.
type Options struct {
	TargetTable   string
	TargetColumns []string
	ColumnMapping map[string]string
	BatchSize     int
}

// Conn is the slice of the database connection the loader needs.
// *database.Connection satisfies it.
type Conn interface {
	Connected() bool
	Connect(ctx context.Context) error
	Execute(ctx context.Context, query string, args ...any) (*database.Result, error)
	Dialect() database.Dialect
}

// Loader writes rows into one target connection.
type Loader struct {
	conn Conn
	log  logrus.FieldLogger
}

func New(conn Conn, log logrus.FieldLogger) *Loader {
	return &Loader{conn: conn, log: log.WithField("component", "loader")}
}

func (l *Loader) connect(ctx context.Context) error {
	if l.conn.Connected() {
		return nil
	}
	return l.conn.Connect(ctx)
}

// CreateTableIfNotExists creates the target table from the ordered column
// definitions. It is a no-op if the table already exists, and safe to call
// repeatedly with the same definitions.
func (l *Loader) CreateTableIfNotExists(ctx context.Context, table string, defs []ColumnDef) error {
	if len(defs) == 0 {
		return &SchemaError{Table: table, Err: fmt.Errorf("no column definitions")}
	}
	if err := l.connect(ctx); err != nil {
		return err
	}

	d := l.conn.Dialect()
	cols := ""
	for i, def := range defs {
		if i > 0 {
			cols += ", "
		}
		cols += d.QuoteIdent(def.Name) + " " + def.Type
	}
	stmt := d.CreateTable(d.QuoteIdent(table), cols)

	l.log.WithField("table", table).Info("ensuring target table exists")
	if _, err := l.conn.Execute(ctx, stmt); err != nil {
		return &SchemaError{Table: table, Err: err}
	}
	return nil
}

// TruncateTable deletes every row from the target table. A plain DELETE is
// used instead of TRUNCATE so the operation is portable across engines.
func (l *Loader) TruncateTable(ctx context.Context, table string) error {
	if err := l.connect(ctx); err != nil {
		return err
	}

	l.log.WithField("table", table).Warn("deleting all rows from target table")
	stmt := "DELETE FROM " + l.conn.Dialect().QuoteIdent(table)
	res, err := l.conn.Execute(ctx, stmt)
	if err != nil {
		return &LoadError{Table: table, Err: err}
	}
	l.log.WithFields(logrus.Fields{"table": table, "deleted": res.Affected}).Info("target table truncated")
	return nil
}

// Load resolves the column plan, projects the rows, and writes them to the
// target table in batches. Each batch is one parameterized multi-row INSERT
// committed in its own transaction; on the first failing batch the load
// stops and already-committed batches remain in place.
func (l *Loader) Load(ctx context.Context, rows [][]any, sourceColumns []string, opts Options) error {
	if len(rows) == 0 || len(sourceColumns) == 0 {
		return ErrEmptyInput
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	pl, err := resolvePlan(sourceColumns, opts.TargetColumns, opts.ColumnMapping)
	if err != nil {
		return err
	}
	projected, err := pl.project(rows)
	if err != nil {
		return err
	}

	if err := l.connect(ctx); err != nil {
		return err
	}

	d := l.conn.Dialect()
	batches := partition(projected, batchSize)
	l.log.WithFields(logrus.Fields{
		"table":      opts.TargetTable,
		"rows":       len(projected),
		"columns":    pl.columns,
		"batches":    len(batches),
		"batch_size": batchSize,
	}).Info("starting load")

	committed := 0
	for i, batch := range batches {
		stmt := buildInsert(d, opts.TargetTable, pl.columns, len(batch))
		args := make([]any, 0, len(batch)*len(pl.columns))
		for _, row := range batch {
			args = append(args, row...)
		}

		if _, err := l.conn.Execute(ctx, stmt, args...); err != nil {
			lerr := &LoadError{Table: opts.TargetTable, Batch: i + 1, Committed: committed, Err: err}
			l.log.WithError(lerr).Error("batch insert failed; earlier batches remain committed")
			return lerr
		}
		committed += len(batch)
		l.log.WithFields(logrus.Fields{"batch": i + 1, "rows": len(batch), "total": committed}).Info("batch committed")
	}

	l.log.WithFields(logrus.Fields{"table": opts.TargetTable, "rows": committed}).Info("load complete")
	return nil
}
