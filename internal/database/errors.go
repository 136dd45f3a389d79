package database

import (
	"errors"
	"fmt"
)

// ErrNoCursor is returned by DescribeColumns when no read query has been
// executed on the connection yet.
var ErrNoCursor = errors.New("no active result cursor")

// ErrNotConnected is returned when a statement is executed before Connect.
var ErrNotConnected = errors.New("no active database session")

// ConnectionError reports a failure to open a session against an engine.
type ConnectionError struct {
	Engine string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Engine, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a statement execution failure. For mutating statements
// a rollback of the current transaction has already been attempted by the
// time the error is returned.
type QueryError struct {
	Engine string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("execute on %s: %v", e.Engine, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
