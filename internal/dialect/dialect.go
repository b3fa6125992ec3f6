// Package dialect renders the warehouse statements for each supported engine.
//
// Available dialects:
//   - redshift: server-side COPY from S3, IDENTITY(0,1), DISTKEY
//   - postgres: GENERATED identity, client-side load through COPY FROM STDIN
//   - duckdb: embedded engine, songplay ids numbered by the insert itself
//
// All dialects share the same table catalogue and the same transform
// semantics; only syntax differs.
package dialect

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/dwhload/internal/schema"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// Dialect renders SQL for one warehouse engine.
type Dialect interface {
	Name() string

	// QuoteIdent renders a table or column name.
	QuoteIdent(name string) string

	DropTable(t schema.Table) string
	CreateTable(t schema.Table) string

	// CopyTable renders the statement that fills a staging table. For
	// server-load engines this is the statement executed; for client-load
	// engines it is the statement the client writer issues.
	CopyTable(t schema.Table, src dwhload.LoadSource) string

	// InsertTable renders the INSERT-SELECT that fills a final table.
	InsertTable(table string) (string, error)

	CountRows(table string) string

	// Placeholder returns the n-th (1-based) bind parameter marker.
	Placeholder(n int) string

	// VarcharLength is the byte capacity of a VARCHAR column, 0 when the
	// engine stores strings of any length.
	VarcharLength(c schema.Column) int
}

// New returns the named dialect.
func New(name string) (Dialect, error) {
	switch name {
	case dwhload.DialectRedshift:
		return &Redshift{}, nil
	case dwhload.DialectPostgres:
		return &Postgres{}, nil
	case dwhload.DialectDuckDB:
		return &DuckDB{}, nil
	default:
		return nil, fmt.Errorf("dialect %q: %w", name, dwhload.ErrUnsupportedDialect)
	}
}

// flavor holds the per-engine differences the shared renderers need.
type flavor struct {
	ident     func(string) string
	colType   func(schema.Column) string
	identity  string
	distKey   bool
	weekday   string
	numberIDs bool
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sanitizeIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func standardType(c schema.Column) string {
	if c.Type == schema.Varchar && c.Length > 0 {
		return fmt.Sprintf("VARCHAR(%d)", c.Length)
	}
	return c.Type.String()
}

func (f flavor) dropTable(t schema.Table) string {
	return "DROP TABLE IF EXISTS " + f.ident(t.Name)
}

func (f flavor) createTable(t schema.Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(f.ident(t.Name))
	b.WriteString(" (\n")
	for i, c := range t.Columns {
		b.WriteString("    ")
		b.WriteString(c.Name)
		b.WriteByte(' ')
		b.WriteString(f.colType(c))
		if c.Identity && f.identity != "" {
			b.WriteByte(' ')
			b.WriteString(f.identity)
		}
		if c.NotNull {
			b.WriteString(" NOT NULL")
		}
		if c.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
		if c.DistKey && f.distKey {
			b.WriteString(" DISTKEY")
		}
		if i < len(t.Columns)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(")")
	return b.String()
}

func (f flavor) columnList(cols []schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = f.ident(c.Name)
	}
	return strings.Join(names, ", ")
}

func (f flavor) countRows(table string) string {
	return "SELECT COUNT(*) FROM " + f.ident(table)
}
