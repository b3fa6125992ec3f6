package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// DuckDBConnector opens an embedded DuckDB database file.
type DuckDBConnector struct {
	path string
}

var _ dwhload.Connector = (*DuckDBConnector)(nil)

// NewDuckDBConnector creates a connector for path. ":memory:" opens a
// private in-memory database per session.
func NewDuckDBConnector(path string) *DuckDBConnector {
	return &DuckDBConnector{path: path}
}

// Connect opens the file and pins a single connection.
func (c *DuckDBConnector) Connect(ctx context.Context) (dwhload.Session, error) {
	dsn := c.path
	if dsn == ":memory:" {
		dsn = ""
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open duckdb %q: %w", dwhload.ErrConnection, c.path, err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to open duckdb %q: %w", dwhload.ErrConnection, c.path, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("%w: failed to open duckdb %q: %w", dwhload.ErrConnection, c.path, err)
	}

	return NewSQLSession(db, conn), nil
}

// SQLSession is a Session over one pinned database/sql connection.
//
// Thread-Safety: NOT safe for concurrent use.
type SQLSession struct {
	db   *sql.DB
	conn *sql.Conn
}

var (
	_ dwhload.Session    = (*SQLSession)(nil)
	_ dwhload.BulkWriter = (*SQLSession)(nil)
)

// NewSQLSession wraps a pinned connection. db may be nil when the caller
// owns the handle; otherwise Close closes it too.
//
// Panics if conn is nil.
func NewSQLSession(db *sql.DB, conn *sql.Conn) *SQLSession {
	if conn == nil {
		panic("conn cannot be nil")
	}
	return &SQLSession{db: db, conn: conn}
}

func (s *SQLSession) Exec(ctx context.Context, query string) error {
	_, err := s.conn.ExecContext(ctx, query)
	return err
}

func (s *SQLSession) QueryInt64(ctx context.Context, query string) (int64, error) {
	var n int64
	err := s.conn.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

// WriteRows ingests rows with one multi-row INSERT.
func (s *SQLSession) WriteRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	query, args := buildMultiRowInsert(table, columns, rows)
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return int64(len(rows)), nil
	}
	return n, nil
}

// Close releases the connection and the handle. Idempotent.
func (s *SQLSession) Close() error {
	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
		s.conn = nil
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
		s.db = nil
	}
	return errors.Join(errs...)
}
