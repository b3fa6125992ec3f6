package dialect

import (
	"fmt"
	"strings"

	"github.com/vvka-141/dwhload/internal/schema"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// redshiftVarcharLength is the capacity of a VARCHAR declared without one.
const redshiftVarcharLength = 256

// Redshift renders Amazon Redshift SQL. Staging tables are filled by the
// cluster itself with COPY ... FROM 's3://...'.
type Redshift struct{}

var _ Dialect = (*Redshift)(nil)

func (*Redshift) flavor() flavor {
	return flavor{
		ident:    func(s string) string { return s },
		colType:  standardType,
		identity: "IDENTITY(0,1)",
		distKey:  true,
		weekday:  "weekday",
	}
}

func (*Redshift) Name() string { return dwhload.DialectRedshift }

func (r *Redshift) QuoteIdent(name string) string { return r.flavor().ident(name) }

func (r *Redshift) DropTable(t schema.Table) string { return r.flavor().dropTable(t) }

func (r *Redshift) CreateTable(t schema.Table) string { return r.flavor().createTable(t) }

// CopyTable renders a JSON COPY that authenticates with the delegated role.
// Event timestamps arrive as epoch milliseconds; oversized strings are
// truncated and blank or empty strings load as NULL.
func (*Redshift) CopyTable(t schema.Table, src dwhload.LoadSource) string {
	format := "FORMAT AS JSON " + quoteLiteral(src.JSONPaths)
	if auto, _ := src.AutoMapping(); auto {
		mapping := strings.ToLower(strings.TrimSpace(src.JSONPaths))
		if mapping == "" {
			mapping = dwhload.JSONPathsAuto
		}
		format = "JSON " + quoteLiteral(mapping)
	}

	region := src.Region
	if region == "" {
		region = dwhload.DefaultRegion
	}

	return fmt.Sprintf(`COPY %s FROM %s
CREDENTIALS %s
%s
TIMEFORMAT 'epochmillisecs'
TRUNCATECOLUMNS BLANKSASNULL EMPTYASNULL
COMPUPDATE OFF REGION %s`,
		t.Name,
		quoteLiteral(src.URI),
		quoteLiteral("aws_iam_role="+src.RoleARN),
		format,
		quoteLiteral(region))
}

func (r *Redshift) InsertTable(table string) (string, error) { return r.flavor().insertTable(table) }

func (r *Redshift) CountRows(table string) string { return r.flavor().countRows(table) }

func (*Redshift) Placeholder(n int) string { return dollarPlaceholder(n) }

func (*Redshift) VarcharLength(c schema.Column) int {
	if c.Length > 0 {
		return c.Length
	}
	return redshiftVarcharLength
}
