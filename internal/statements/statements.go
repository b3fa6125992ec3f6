// Package statements builds the four ordered statement lists a run executes:
// drops, creates, staging copies and final-table inserts.
package statements

import (
	"fmt"

	"github.com/vvka-141/dwhload/internal/dialect"
	"github.com/vvka-141/dwhload/internal/schema"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// Builder renders statements for one configuration.
type Builder struct {
	dialect dialect.Dialect
	catalog *schema.Catalog
	config  *dwhload.Config
}

// New creates a Builder for cfg's dialect.
func New(cfg *dwhload.Config) (*Builder, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}
	d, err := dialect.New(cfg.Warehouse.Dialect)
	if err != nil {
		return nil, err
	}
	return &Builder{
		dialect: d,
		catalog: schema.New(schema.Options{StrictStagingKeys: cfg.Warehouse.StrictStagingKeys}),
		config:  cfg,
	}, nil
}

// Dialect returns the dialect statements are rendered in.
func (b *Builder) Dialect() dialect.Dialect { return b.dialect }

// Catalog returns the table catalogue.
func (b *Builder) Catalog() *schema.Catalog { return b.catalog }

// DropTableStatements returns one DROP TABLE IF EXISTS per table.
func (b *Builder) DropTableStatements() []dwhload.Statement {
	tables := b.catalog.Tables()
	out := make([]dwhload.Statement, len(tables))
	for i, t := range tables {
		out[i] = dwhload.Statement{Purpose: dwhload.PurposeDrop, Table: t.Name, Text: b.dialect.DropTable(t)}
	}
	return out
}

// CreateTableStatements returns one CREATE TABLE per table.
func (b *Builder) CreateTableStatements() []dwhload.Statement {
	tables := b.catalog.Tables()
	out := make([]dwhload.Statement, len(tables))
	for i, t := range tables {
		out[i] = dwhload.Statement{Purpose: dwhload.PurposeCreate, Table: t.Name, Text: b.dialect.CreateTable(t)}
	}
	return out
}

// CopyTableStatements returns the staging loads, events first.
func (b *Builder) CopyTableStatements() []dwhload.Statement {
	sources := map[string]dwhload.LoadSource{
		schema.StagingEvents: b.source(b.config.S3.LogData, b.config.S3.LogJSONPath),
		schema.StagingSongs:  b.source(b.config.S3.SongData, dwhload.JSONPathsAuto),
	}

	out := make([]dwhload.Statement, 0, len(schema.StagingOrder))
	for _, name := range schema.StagingOrder {
		t, _ := b.catalog.Lookup(name)
		src := sources[name]
		out = append(out, dwhload.Statement{
			Purpose: dwhload.PurposeCopy,
			Table:   name,
			Text:    b.dialect.CopyTable(t, src),
			Source:  &src,
		})
	}
	return out
}

// InsertTableStatements returns the transforms in the order
// songplays, users, songs, artists, time.
func (b *Builder) InsertTableStatements() ([]dwhload.Statement, error) {
	out := make([]dwhload.Statement, 0, len(schema.TransformOrder))
	for _, name := range schema.TransformOrder {
		text, err := b.dialect.InsertTable(name)
		if err != nil {
			return nil, fmt.Errorf("render insert for %s: %w", name, err)
		}
		out = append(out, dwhload.Statement{Purpose: dwhload.PurposeInsert, Table: name, Text: text})
	}
	return out, nil
}

// CountStatements returns a row count query per table.
func (b *Builder) CountStatements() []dwhload.Statement {
	tables := b.catalog.Tables()
	out := make([]dwhload.Statement, len(tables))
	for i, t := range tables {
		out[i] = dwhload.Statement{Purpose: dwhload.PurposeCount, Table: t.Name, Text: b.dialect.CountRows(t.Name)}
	}
	return out
}

func (b *Builder) source(uri, jsonPaths string) dwhload.LoadSource {
	region := b.config.Warehouse.Region
	if region == "" {
		region = dwhload.DefaultRegion
	}
	return dwhload.LoadSource{
		URI:       uri,
		JSONPaths: jsonPaths,
		RoleARN:   b.config.IAMRole.ARN,
		Region:    region,
	}
}
