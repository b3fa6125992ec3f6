package dialect

import (
	"fmt"
	"strings"

	"github.com/vvka-141/dwhload/internal/schema"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// DuckDB renders SQL for an embedded DuckDB file. DuckDB has no identity
// columns, so songplay_id is numbered from 0 by the songplays insert.
type DuckDB struct{}

var _ Dialect = (*DuckDB)(nil)

func (*DuckDB) flavor() flavor {
	return flavor{
		ident: sanitizeIdent,
		colType: func(c schema.Column) string {
			if c.Type == schema.Decimal {
				return "DOUBLE"
			}
			return standardType(c)
		},
		weekday:   "dow",
		numberIDs: true,
	}
}

func (*DuckDB) Name() string { return dwhload.DialectDuckDB }

func (d *DuckDB) QuoteIdent(name string) string { return d.flavor().ident(name) }

func (d *DuckDB) DropTable(t schema.Table) string { return d.flavor().dropTable(t) }

func (d *DuckDB) CreateTable(t schema.Table) string { return d.flavor().createTable(t) }

func (d *DuckDB) CopyTable(t schema.Table, _ dwhload.LoadSource) string {
	f := d.flavor()
	cols := t.WritableColumns()
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", f.ident(t.Name), f.columnList(cols), strings.Join(marks, ", "))
}

func (d *DuckDB) InsertTable(table string) (string, error) { return d.flavor().insertTable(table) }

func (d *DuckDB) CountRows(table string) string { return d.flavor().countRows(table) }

func (*DuckDB) Placeholder(n int) string { return dollarPlaceholder(n) }

// VarcharLength is 0: DuckDB accepts VARCHAR(n) but never enforces n.
func (*DuckDB) VarcharLength(schema.Column) int { return 0 }
