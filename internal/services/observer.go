package services

import (
	"time"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// LoggingObserver reports statement progress through a Logger. Used when
// the terminal cannot host the progress view.
type LoggingObserver struct {
	logger dwhload.Logger
}

var _ dwhload.Observer = (*LoggingObserver)(nil)

// NewLoggingObserver creates a LoggingObserver.
func NewLoggingObserver(logger dwhload.Logger) *LoggingObserver {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) StatementStarted(stmt dwhload.Statement, index, total int) {
	o.logger.Verbose("[%d/%d] %s %s", index+1, total, stmt.Purpose, stmt.Table)
}

func (o *LoggingObserver) StatementFinished(stmt dwhload.Statement, elapsed time.Duration, err error) {
	if err != nil {
		o.logger.Error("%s %s failed after %v", stmt.Purpose, stmt.Table, elapsed.Round(time.Millisecond))
		return
	}
	o.logger.Verbose("%s %s done in %v", stmt.Purpose, stmt.Table, elapsed.Round(time.Millisecond))
}
