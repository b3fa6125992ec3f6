// Package ingest performs staging bulk loads from the client side, for
// engines that cannot read JSON objects from S3 on their own.
//
// The loader reads newline-delimited (or concatenated) JSON objects, maps
// their fields to staging columns by JSONPaths descriptor or by name, and
// writes them through the session in batches.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/dwhload/internal/objectstore"
	"github.com/vvka-141/dwhload/internal/schema"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// Loader streams source objects into staging tables.
type Loader struct {
	store       objectstore.Store
	catalog     *schema.Catalog
	batchSize   int
	varcharSize func(schema.Column) int
	logger      dwhload.Logger
}

// NewLoader creates a Loader. batchSize <= 0 selects DefaultInsertBatchSize.
//
// Panics if store, catalog or logger is nil.
func NewLoader(store objectstore.Store, catalog *schema.Catalog, batchSize int, logger dwhload.Logger) *Loader {
	if store == nil {
		panic("store cannot be nil")
	}
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if batchSize <= 0 {
		batchSize = dwhload.DefaultInsertBatchSize
	}
	return &Loader{store: store, catalog: catalog, batchSize: batchSize, logger: logger}
}

// WithVarcharLimit sets the byte capacity strings are cut to per column,
// typically dialect.Dialect.VarcharLength. Without it only VARCHAR(n)
// columns are truncated.
func (l *Loader) WithVarcharLimit(size func(schema.Column) int) *Loader {
	l.varcharSize = size
	return l
}

// columns returns the writable columns of t with the effective VARCHAR
// capacity applied.
func (l *Loader) columns(t schema.Table) []schema.Column {
	cols := t.WritableColumns()
	if l.varcharSize == nil {
		return cols
	}
	out := make([]schema.Column, len(cols))
	for i, c := range cols {
		if c.Type == schema.Varchar {
			c.Length = l.varcharSize(c)
		}
		out[i] = c
	}
	return out
}

// mapper turns one decoded object into a row.
type mapper func(obj map[string]any) []any

// Load executes a copy statement: every object under stmt.Source.URI is
// decoded and written to stmt.Table. Returns the number of rows written.
func (l *Loader) Load(ctx context.Context, w dwhload.BulkWriter, stmt dwhload.Statement) (int64, error) {
	if stmt.Source == nil {
		return 0, fmt.Errorf("copy statement for %s has no source", stmt.Table)
	}
	table, ok := l.catalog.Lookup(stmt.Table)
	if !ok {
		return 0, fmt.Errorf("unknown staging table %q", stmt.Table)
	}

	cols := l.columns(table)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	toRow, err := l.buildMapper(ctx, cols, *stmt.Source)
	if err != nil {
		return 0, err
	}

	objects, err := l.store.List(ctx, stmt.Source.URI)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, fmt.Errorf("no objects found under %s", stmt.Source.URI)
	}
	l.logger.Verbose("Loading %d object(s) from %s into %s", len(objects), stmt.Source.URI, stmt.Table)

	var total int64
	batch := make([][]any, 0, l.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := w.WriteRows(ctx, table.Name, names, batch)
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	for _, uri := range objects {
		err := l.decodeObject(ctx, uri, func(obj map[string]any) error {
			batch = append(batch, toRow(obj))
			if len(batch) >= l.batchSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			return total, err
		}
	}
	if err := flush(); err != nil {
		return total, err
	}

	return total, nil
}

func (l *Loader) decodeObject(ctx context.Context, uri string, emit func(map[string]any) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rc, err := l.store.Open(ctx, uri)
	if err != nil {
		return err
	}
	defer rc.Close()

	dec := json.NewDecoder(rc)
	dec.UseNumber()
	for {
		var obj map[string]any
		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid JSON in %s: %w", uri, err)
		}
		if err := emit(obj); err != nil {
			return err
		}
	}
}

func (l *Loader) buildMapper(ctx context.Context, cols []schema.Column, src dwhload.LoadSource) (mapper, error) {
	if auto, ignoreCase := src.AutoMapping(); auto {
		return autoMapper(cols, ignoreCase), nil
	}

	rc, err := l.store.Open(ctx, src.JSONPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSONPaths file: %w", err)
	}
	defer rc.Close()

	paths, err := parseDescriptor(rc, len(cols))
	if err != nil {
		return nil, err
	}

	return func(obj map[string]any) []any {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = coerce(c, paths[i].eval(obj))
		}
		return row
	}, nil
}

func autoMapper(cols []schema.Column, ignoreCase bool) mapper {
	return func(obj map[string]any) []any {
		lookup := obj
		if ignoreCase {
			lookup = make(map[string]any, len(obj))
			for k, v := range obj {
				lookup[strings.ToLower(k)] = v
			}
		}
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = coerce(c, lookup[c.Name])
		}
		return row
	}
}
