package services

import (
	"context"
	"time"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// execFunc runs one statement on a session.
type execFunc func(ctx context.Context, stmt dwhload.Statement) error

// runSequence executes stmts in order, notifying observer around each one.
// The first failure aborts the sequence and is returned as a
// *dwhload.StatementError.
func runSequence(ctx context.Context, observer dwhload.Observer, stmts []dwhload.Statement, exec execFunc) error {
	for i, stmt := range stmts {
		if err := runOne(ctx, observer, stmt, i, len(stmts), exec); err != nil {
			return err
		}
	}
	return nil
}

func runOne(ctx context.Context, observer dwhload.Observer, stmt dwhload.Statement, index, total int, exec execFunc) error {
	observer.StatementStarted(stmt, index, total)
	start := time.Now()

	err := ctx.Err()
	if err == nil {
		err = exec(ctx, stmt)
	}

	observer.StatementFinished(stmt, time.Since(start), err)
	return dwhload.NewStatementError(stmt, err)
}

// execOn returns an execFunc running statement text on session.
func execOn(session dwhload.Session) execFunc {
	return func(ctx context.Context, stmt dwhload.Statement) error {
		return session.Exec(ctx, stmt.Text)
	}
}
