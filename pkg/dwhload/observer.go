package dwhload

import "time"

// Observer is notified around every statement a run executes.
// Implementations must not block.
type Observer interface {
	StatementStarted(stmt Statement, index, total int)
	StatementFinished(stmt Statement, elapsed time.Duration, err error)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) StatementStarted(Statement, int, int)              {}
func (NopObserver) StatementFinished(Statement, time.Duration, error) {}

var _ Observer = NopObserver{}
