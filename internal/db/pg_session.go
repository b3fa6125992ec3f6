package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// closeTimeout bounds the graceful Terminate message sent on Close.
const closeTimeout = 5 * time.Second

// PgConnector opens single pgx connections to Redshift or PostgreSQL.
// Each Connect call dials once; failures are returned, never retried.
type PgConnector struct {
	params   ConnectionParams
	redshift bool
	tokens   TokenProvider
	logger   dwhload.Logger
}

var _ dwhload.Connector = (*PgConnector)(nil)

// NewPgConnector creates a password-authenticated connector.
// redshift switches to the simple query protocol and row-wise client loads.
func NewPgConnector(params ConnectionParams, redshift bool, logger dwhload.Logger) *PgConnector {
	return &PgConnector{params: params, redshift: redshift, logger: logger}
}

// WithTokenProvider makes the connector use short-lived tokens as the password.
func (c *PgConnector) WithTokenProvider(tokens TokenProvider) *PgConnector {
	c.tokens = tokens
	return c
}

// Connect establishes one session.
func (c *PgConnector) Connect(ctx context.Context) (dwhload.Session, error) {
	params := c.params

	if c.tokens != nil {
		token, expiresOn, err := c.tokens.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to acquire token from %s: %w", dwhload.ErrConnection, c.tokens, err)
		}
		if time.Until(expiresOn) < 5*time.Minute {
			c.logger.Info("Warning: token from %s expires in %v", c.tokens, time.Until(expiresOn).Round(time.Second))
		}
		params.Password = token
	}

	connConfig, err := pgx.ParseConfig(BuildConnectionString(params))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", err, dwhload.ErrConfig)
	}
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		c.logger.Verbose("NOTICE: %s", notice.Message)
	}
	if c.redshift {
		connConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	c.logger.Verbose("Connecting to %s/%s as %s", params.Address(), params.Database, params.Username)

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, params.Host, params.Port, params.Database)
	}

	return NewPgSession(conn, !c.redshift), nil
}

// PgSession is a Session over one *pgx.Conn.
//
// Thread-Safety: NOT safe for concurrent use.
type PgSession struct {
	conn    *pgx.Conn
	useCopy bool
}

var (
	_ dwhload.Session    = (*PgSession)(nil)
	_ dwhload.BulkWriter = (*PgSession)(nil)
)

// NewPgSession wraps an established connection. useCopy selects the
// COPY FROM STDIN protocol for WriteRows; otherwise multi-row INSERTs are used.
//
// Panics if conn is nil.
func NewPgSession(conn *pgx.Conn, useCopy bool) *PgSession {
	if conn == nil {
		panic("conn cannot be nil")
	}
	return &PgSession{conn: conn, useCopy: useCopy}
}

// Exec runs sql and returns the driver error unchanged.
func (s *PgSession) Exec(ctx context.Context, sql string) error {
	_, err := s.conn.Exec(ctx, sql)
	return err
}

func (s *PgSession) QueryInt64(ctx context.Context, sql string) (int64, error) {
	var n int64
	err := s.conn.QueryRow(ctx, sql).Scan(&n)
	return n, err
}

// WriteRows ingests rows into table.
func (s *PgSession) WriteRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if s.useCopy {
		return s.conn.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	}

	sql, args := buildMultiRowInsert(table, columns, rows)
	tag, err := s.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Close terminates the connection. Idempotent.
func (s *PgSession) Close() error {
	if s.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	err := s.conn.Close(ctx)
	s.conn = nil
	return err
}
