package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// buildMultiRowInsert renders INSERT INTO t (cols) VALUES ($1, ...), (...)
// and flattens rows into the matching argument list.
func buildMultiRowInsert(table string, columns []string, rows [][]any) (string, []any) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", pgx.Identifier{table}.Sanitize(), strings.Join(quoted, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	n := 1
	for r, row := range rows {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
			args = append(args, row[c])
		}
		b.WriteByte(')')
	}

	return b.String(), args
}
