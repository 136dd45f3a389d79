package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sirupsen/logrus"
)

// Result is the outcome of a single statement. For read queries Rows and
// Columns are populated; for mutating statements only Affected is set and
// the statement has already been committed.
type Result struct {
	Rows     [][]any
	Columns  []string
	Affected int64
}

// Connection is a live handle to one engine. It owns at most one open
// session and remembers the column names of the most recent read query.
// A Connection is not safe for concurrent use.
type Connection struct {
	dialect Dialect
	params  Params
	log     logrus.FieldLogger

	db      *sql.DB
	sess    *sql.Conn
	columns []string
}

// NewConnection resolves the engine dialect and decodes the raw connection
// params. It does not open a session; call Connect for that.
func NewConnection(engine string, rawParams map[string]any, log logrus.FieldLogger) (*Connection, error) {
	d, err := Lookup(engine)
	if err != nil {
		return nil, err
	}
	p, err := DecodeParams(rawParams)
	if err != nil {
		return nil, err
	}
	return &Connection{
		dialect: d,
		params:  p,
		log:     log.WithField("engine", d.Name),
	}, nil
}

// Dialect returns the engine dialect backing this connection.
func (c *Connection) Dialect() Dialect { return c.dialect }

// Connected reports whether a session is currently open.
func (c *Connection) Connected() bool { return c.sess != nil }

// Connect opens a single session against the engine. Defaults from the
// dialect apply for absent params. It does not retry.
func (c *Connection) Connect(ctx context.Context) error {
	if c.sess != nil {
		return nil
	}
	dsn, err := c.dialect.BuildDSN(c.params)
	if err != nil {
		return &ConnectionError{Engine: c.dialect.Name, Err: err}
	}
	db, err := sql.Open(c.dialect.Driver, dsn)
	if err != nil {
		return &ConnectionError{Engine: c.dialect.Name, Err: err}
	}
	// Exactly one session per Connection; the pool never grows past it.
	db.SetMaxOpenConns(1)
	sess, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return &ConnectionError{Engine: c.dialect.Name, Err: err}
	}
	if err := sess.PingContext(ctx); err != nil {
		_ = sess.Close()
		_ = db.Close()
		return &ConnectionError{Engine: c.dialect.Name, Err: err}
	}
	c.db = db
	c.sess = sess
	c.log.Info("database session opened")
	return nil
}

// Execute runs a single statement. Read queries (per IsReadQuery) return all
// rows plus column names in one call; everything else runs in its own
// transaction and is committed immediately, returning the affected row
// count. On a mutating-statement error the transaction is rolled back;
// rollback failures are logged, the original error is what is returned.
func (c *Connection) Execute(ctx context.Context, query string, args ...any) (*Result, error) {
	if c.sess == nil {
		return nil, &QueryError{Engine: c.dialect.Name, Err: ErrNotConnected}
	}
	if IsReadQuery(query) {
		return c.executeRead(ctx, query, args...)
	}
	return c.executeWrite(ctx, query, args...)
}

func (c *Connection) executeRead(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := c.sess.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Engine: c.dialect.Name, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Engine: c.dialect.Name, Err: err}
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Engine: c.dialect.Name, Err: err}
		}
		for i, v := range vals {
			// Drivers hand text columns back as []byte; normalize to string
			// so values survive re-insertion on a different engine.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Engine: c.dialect.Name, Err: err}
	}

	c.columns = cols
	c.log.WithField("rows", len(out)).Info("query executed")
	return &Result{Rows: out, Columns: cols}, nil
}

func (c *Connection) executeWrite(ctx context.Context, query string, args ...any) (*Result, error) {
	tx, err := c.sess.BeginTx(ctx, nil)
	if err != nil {
		return nil, &QueryError{Engine: c.dialect.Name, Err: err}
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.log.WithError(rbErr).Error("rollback failed")
		}
		return nil, &QueryError{Engine: c.dialect.Name, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &QueryError{Engine: c.dialect.Name, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report a count for DDL; treat as zero.
		affected = 0
	}
	c.log.WithField("affected", affected).Info("statement executed")
	return &Result{Affected: affected}, nil
}

// DescribeColumns returns the column names of the most recent read query on
// this connection, or ErrNoCursor if none has run yet.
func (c *Connection) DescribeColumns() ([]string, error) {
	if c.columns == nil {
		return nil, ErrNoCursor
	}
	out := make([]string, len(c.columns))
	copy(out, c.columns)
	return out, nil
}

// Disconnect closes the session. It is idempotent and never returns an
// error; close failures are logged so a failed disconnect cannot abort the
// caller's run.
func (c *Connection) Disconnect() {
	if c.sess != nil {
		if err := c.sess.Close(); err != nil {
			c.log.WithError(err).Error("closing session failed")
		}
		c.sess = nil
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.log.WithError(err).Error("closing database failed")
		}
		c.db = nil
		c.log.Info("database session closed")
	}
	c.columns = nil
}

// IsReadQuery reports whether the statement's trimmed text begins with the
// token SELECT, case-insensitively. Everything else is treated as a
// mutating statement subject to commit/rollback.
func IsReadQuery(query string) bool {
	q := strings.TrimSpace(query)
	if len(q) < len("SELECT") {
		return false
	}
	head := q[:len("SELECT")]
	if !strings.EqualFold(head, "SELECT") {
		return false
	}
	if len(q) == len("SELECT") {
		return true
	}
	return !isIdentChar(q[len("SELECT")])
}

func isIdentChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_':
		return true
	}
	return false
}
