package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vvka-141/dwhload/internal/statements"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// sqlStateUndefinedTable is PostgreSQL's 42P01, also raised by Redshift.
const sqlStateUndefinedTable = "42P01"

// TableCount is the row count of one table. Missing is set when the
// table does not exist yet.
type TableCount struct {
	Table   string
	Rows    int64
	Missing bool
}

// Reporter counts rows in the seven tables.
type Reporter struct {
	builder *statements.Builder
	logger  dwhload.Logger
}

// NewReporter creates a Reporter.
//
// Panics on nil dependencies.
func NewReporter(builder *statements.Builder, logger dwhload.Logger) *Reporter {
	if builder == nil {
		panic("builder cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Reporter{builder: builder, logger: logger}
}

// Counts runs one COUNT(*) per table, in table order.
func (r *Reporter) Counts(ctx context.Context, session dwhload.Session) ([]TableCount, error) {
	stmts := r.builder.CountStatements()
	out := make([]TableCount, 0, len(stmts))

	for _, stmt := range stmts {
		n, err := session.QueryInt64(ctx, stmt.Text)
		switch {
		case err == nil:
			out = append(out, TableCount{Table: stmt.Table, Rows: n})
		case isUndefinedTable(err):
			r.logger.Verbose("Table %s does not exist", stmt.Table)
			out = append(out, TableCount{Table: stmt.Table, Missing: true})
		default:
			return nil, dwhload.NewStatementError(stmt, err)
		}
	}
	return out, nil
}

// Render writes counts as a table.
func (r *Reporter) Render(w io.Writer, counts []TableCount) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Rows"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Rows", Align: text.AlignRight},
	})

	for _, c := range counts {
		rows := fmt.Sprintf("%d", c.Rows)
		if c.Missing {
			rows = "missing"
		}
		t.AppendRow(table.Row{c.Table, rows})
	}
	t.Render()
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateUndefinedTable
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist")
}
