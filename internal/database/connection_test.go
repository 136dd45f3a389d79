package database_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"dbetl/internal/database"
	_ "dbetl/internal/database/sqlite"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newSQLiteConn(t *testing.T) *database.Connection {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := database.NewConnection("sqlite", map[string]any{"database": path}, testLogger())
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	return conn
}

func TestNewConnectionUnknownEngine(t *testing.T) {
	t.Parallel()

	_, err := database.NewConnection("dbase", nil, testLogger())
	if err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

// TestConnectionLifecycle walks the full contract against a real SQLite
// database: connect, DDL, insert, select, describe, disconnect.
func TestConnectionLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn := newSQLiteConn(t)

	if conn.Connected() {
		t.Fatal("connection should not be open before Connect")
	}
	if err := conn.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !conn.Connected() {
		t.Fatal("connection should be open after Connect")
	}
	// Connect again is a no-op.
	if err := conn.Connect(ctx); err != nil {
		t.Fatalf("second Connect: %v", err)
	}

	if _, err := conn.Execute(ctx, "CREATE TABLE t (id INTEGER, name TEXT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := conn.Execute(ctx, "INSERT INTO t (id, name) VALUES (?, ?), (?, ?)", 1, "a", 2, "b")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.Affected != 2 {
		t.Fatalf("affected %d, want 2", res.Affected)
	}
	if res.Columns != nil {
		t.Fatalf("write result should carry no columns, got %v", res.Columns)
	}

	res, err = conn.Execute(ctx, "SELECT id, name FROM t ORDER BY id")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !reflect.DeepEqual(res.Columns, []string{"id", "name"}) {
		t.Fatalf("columns %v", res.Columns)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows %d, want 2", len(res.Rows))
	}
	if res.Rows[0][1] != "a" || res.Rows[1][1] != "b" {
		t.Fatalf("unexpected row values: %v", res.Rows)
	}

	cols, err := conn.DescribeColumns()
	if err != nil {
		t.Fatalf("DescribeColumns: %v", err)
	}
	if !reflect.DeepEqual(cols, []string{"id", "name"}) {
		t.Fatalf("described columns %v", cols)
	}

	conn.Disconnect()
	if conn.Connected() {
		t.Fatal("connection should be closed after Disconnect")
	}
	// Disconnect is idempotent.
	conn.Disconnect()

	if _, err := conn.DescribeColumns(); !errors.Is(err, database.ErrNoCursor) {
		t.Fatalf("want ErrNoCursor after disconnect, got %v", err)
	}
}

func TestDescribeColumnsBeforeQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn := newSQLiteConn(t)
	if err := conn.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	if _, err := conn.DescribeColumns(); !errors.Is(err, database.ErrNoCursor) {
		t.Fatalf("want ErrNoCursor, got %v", err)
	}
}

func TestExecuteWithoutConnect(t *testing.T) {
	t.Parallel()

	conn := newSQLiteConn(t)
	_, err := conn.Execute(context.Background(), "SELECT 1")
	if !errors.Is(err, database.ErrNotConnected) {
		t.Fatalf("want ErrNotConnected, got %v", err)
	}
	var qe *database.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("want QueryError, got %T", err)
	}
}

// TestExecuteWriteError checks a failing mutating statement comes back as a
// QueryError after the rollback attempt.
func TestExecuteWriteError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn := newSQLiteConn(t)
	if err := conn.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	_, err := conn.Execute(ctx, "INSERT INTO missing_table VALUES (1)")
	var qe *database.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("want QueryError, got %v", err)
	}
}

func TestConnectBadPath(t *testing.T) {
	t.Parallel()

	conn, err := database.NewConnection("sqlite", map[string]any{
		"database": filepath.Join(t.TempDir(), "no-such-dir", "x", "test.db"),
	}, testLogger())
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	err = conn.Connect(context.Background())
	var ce *database.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConnectionError, got %v", err)
	}
}
