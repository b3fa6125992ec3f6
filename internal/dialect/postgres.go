package dialect

import (
	"fmt"

	"github.com/vvka-141/dwhload/internal/schema"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// Postgres renders PostgreSQL SQL. PostgreSQL cannot read JSON from S3, so
// staging tables are filled by the client through COPY FROM STDIN.
type Postgres struct{}

var _ Dialect = (*Postgres)(nil)

func (*Postgres) flavor() flavor {
	return flavor{
		ident: sanitizeIdent,
		colType: func(c schema.Column) string {
			if c.Type == schema.Decimal {
				return "NUMERIC"
			}
			return standardType(c)
		},
		identity: "GENERATED BY DEFAULT AS IDENTITY (START WITH 0 MINVALUE 0)",
		weekday:  "dow",
	}
}

func (*Postgres) Name() string { return dwhload.DialectPostgres }

func (p *Postgres) QuoteIdent(name string) string { return p.flavor().ident(name) }

func (p *Postgres) DropTable(t schema.Table) string { return p.flavor().dropTable(t) }

func (p *Postgres) CreateTable(t schema.Table) string { return p.flavor().createTable(t) }

func (p *Postgres) CopyTable(t schema.Table, _ dwhload.LoadSource) string {
	f := p.flavor()
	return fmt.Sprintf("COPY %s (%s) FROM STDIN", f.ident(t.Name), f.columnList(t.WritableColumns()))
}

func (p *Postgres) InsertTable(table string) (string, error) { return p.flavor().insertTable(table) }

func (p *Postgres) CountRows(table string) string { return p.flavor().countRows(table) }

func (*Postgres) Placeholder(n int) string { return dollarPlaceholder(n) }

func (*Postgres) VarcharLength(c schema.Column) int { return c.Length }
