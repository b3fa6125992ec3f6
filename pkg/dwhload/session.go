package dwhload

import "context"

// Connector establishes a warehouse session.
// Each call opens a new, independent session; nothing is pooled or retried.
type Connector interface {
	Connect(ctx context.Context) (Session, error)
}

// Session is one live warehouse connection.
//
// Thread-Safety: NOT safe for concurrent use. Statements run one at a time,
// each awaited before the next is issued.
//
// The caller owns the session and must release it on every exit path:
//
//	session, err := connector.Connect(ctx)
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
type Session interface {
	// Exec runs a statement that returns no rows. Driver errors are
	// returned unchanged.
	Exec(ctx context.Context, sql string) error

	// QueryInt64 runs a statement returning a single integer.
	QueryInt64(ctx context.Context, sql string) (int64, error)

	// Close releases the connection. Idempotent.
	Close() error
}

// BulkWriter is implemented by sessions that can ingest rows sent by the
// client. Used by the client load mode.
type BulkWriter interface {
	WriteRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}
