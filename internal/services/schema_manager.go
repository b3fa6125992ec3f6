package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/dwhload/internal/statements"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// SchemaManager drops and recreates the seven warehouse tables.
//
// Thread-Safety: NOT safe for concurrent Reset() calls on the same session.
type SchemaManager struct {
	builder  *statements.Builder
	approver dwhload.Approver
	observer dwhload.Observer
	logger   dwhload.Logger
}

// NewSchemaManager creates a SchemaManager.
//
// Panics on nil dependencies.
func NewSchemaManager(builder *statements.Builder, approver dwhload.Approver, observer dwhload.Observer, logger dwhload.Logger) *SchemaManager {
	if builder == nil {
		panic("builder cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if observer == nil {
		panic("observer cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SchemaManager{builder: builder, approver: approver, observer: observer, logger: logger}
}

// Reset asks for approval to drop every table in target, then executes all
// drops followed by all creates on session. Reruns are destructive.
func (m *SchemaManager) Reset(ctx context.Context, session dwhload.Session, target string) error {
	m.logger.Verbose("Requesting approval to reset tables in '%s'", target)
	approved, err := m.approver.RequestApproval(ctx, target)
	if err != nil {
		return fmt.Errorf("approval request failed: %w", err)
	}
	if !approved {
		return fmt.Errorf("reset of '%s' was not approved: %w", target, dwhload.ErrApprovalDenied)
	}

	if err := m.DropTables(ctx, session); err != nil {
		return err
	}
	return m.CreateTables(ctx, session)
}

// DropTables executes DROP TABLE IF EXISTS for every table.
func (m *SchemaManager) DropTables(ctx context.Context, session dwhload.Session) error {
	stmts := m.builder.DropTableStatements()
	if err := runSequence(ctx, m.observer, stmts, execOn(session)); err != nil {
		return err
	}
	m.logger.Info("✓ Dropped %d tables", len(stmts))
	return nil
}

// CreateTables executes CREATE TABLE for every table.
func (m *SchemaManager) CreateTables(ctx context.Context, session dwhload.Session) error {
	stmts := m.builder.CreateTableStatements()
	if err := runSequence(ctx, m.observer, stmts, execOn(session)); err != nil {
		return err
	}
	m.logger.Info("✓ Created %d tables", len(stmts))
	return nil
}
