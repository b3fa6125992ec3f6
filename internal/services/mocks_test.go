package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// mockSession records executed SQL. failOn makes Exec fail for the first
// statement containing the substring.
type mockSession struct {
	mu       sync.Mutex
	executed []string
	failOn   string
	err      error
	counts   map[string]int64
	countErr map[string]error
	closed   bool
}

func (m *mockSession) Exec(_ context.Context, sql string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.Contains(sql, m.failOn) {
		return m.err
	}
	m.executed = append(m.executed, sql)
	return nil
}

func (m *mockSession) QueryInt64(_ context.Context, sql string) (int64, error) {
	for table, err := range m.countErr {
		if strings.HasSuffix(sql, " "+table) {
			return 0, err
		}
	}
	for table, n := range m.counts {
		if strings.HasSuffix(sql, " "+table) {
			return n, nil
		}
	}
	return 0, nil
}

func (m *mockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type mockBulkSession struct {
	mockSession
	written map[string]int
}

func (m *mockBulkSession) WriteRows(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.written == nil {
		m.written = map[string]int{}
	}
	m.written[table] += len(rows)
	return int64(len(rows)), nil
}

// mockConnector hands out fresh sessions that share one execution log.
type mockConnector struct {
	mu       sync.Mutex
	sessions []*mockSession
	failOn   string
	err      error
	connErr  error
}

func (m *mockConnector) Connect(_ context.Context) (dwhload.Session, error) {
	if m.connErr != nil {
		return nil, m.connErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &mockSession{failOn: m.failOn, err: m.err}
	m.sessions = append(m.sessions, s)
	return s, nil
}

func (m *mockConnector) executed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sessions {
		out = append(out, s.executed...)
	}
	return out
}

type mockApprover struct {
	approved bool
	err      error
	target   string
}

func (m *mockApprover) RequestApproval(_ context.Context, target string) (bool, error) {
	m.target = target
	return m.approved, m.err
}

type mockLogger struct{}

func (m *mockLogger) Verbose(_ string, _ ...interface{}) {}
func (m *mockLogger) Info(_ string, _ ...interface{})    {}
func (m *mockLogger) Error(_ string, _ ...interface{})   {}

type observedEvent struct {
	started bool
	table   string
	purpose dwhload.Purpose
	err     error
}

type recordingObserver struct {
	mu     sync.Mutex
	events []observedEvent
}

func (o *recordingObserver) StatementStarted(stmt dwhload.Statement, _, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, observedEvent{started: true, table: stmt.Table, purpose: stmt.Purpose})
}

func (o *recordingObserver) StatementFinished(stmt dwhload.Statement, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, observedEvent{table: stmt.Table, purpose: stmt.Purpose, err: err})
}
