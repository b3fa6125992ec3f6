package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dwhload/internal/db"
	"github.com/vvka-141/dwhload/internal/ingest"
	"github.com/vvka-141/dwhload/internal/objectstore"
	"github.com/vvka-141/dwhload/internal/schema"
	"github.com/vvka-141/dwhload/internal/testinfra"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// runScenario resets the schema twice, then loads and transforms the Muse
// fixtures, and returns the session for assertions.
func runScenario(t *testing.T, cfg *dwhload.Config, connector dwhload.Connector) dwhload.Session {
	t.Helper()
	ctx := context.Background()

	session, err := connector.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	b := newBuilder(t, cfg)
	m := NewSchemaManager(b, &mockApprover{approved: true}, dwhload.NopObserver{}, &mockLogger{})
	require.NoError(t, m.Reset(ctx, session, cfg.Target()))
	require.NoError(t, m.Reset(ctx, session, cfg.Target()), "drop-then-create is repeatable")

	loader := ingest.NewLoader(objectstore.NewLocalStore(), b.Catalog(), 0, &mockLogger{})
	p := NewPipeline(b, connector, loader, PipelineOptions{
		LoadMode:           cfg.EffectiveLoadMode(),
		ParallelTransforms: cfg.Warehouse.ParallelTransforms,
	}, dwhload.NopObserver{}, &mockLogger{})
	require.NoError(t, p.Run(ctx, session))

	return session
}

func queryInt(t *testing.T, s dwhload.Session, sql string) int64 {
	t.Helper()
	n, err := s.QueryInt64(context.Background(), sql)
	require.NoError(t, err, sql)
	return n
}

func assertMuseScenario(t *testing.T, s dwhload.Session, q func(string) string) {
	t.Helper()

	assert.Equal(t, int64(2), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.StagingEvents)))
	assert.Equal(t, int64(1), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.StagingSongs)))

	assert.Equal(t, int64(1), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Songplays)))
	assert.Equal(t, int64(7), queryInt(t, s, "SELECT user_id FROM "+q(schema.Songplays)))
	assert.Equal(t, int64(150), queryInt(t, s, "SELECT session_id FROM "+q(schema.Songplays)))
	assert.Equal(t, int64(0), queryInt(t, s, "SELECT songplay_id FROM "+q(schema.Songplays)))
	assert.Equal(t, int64(1), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Songplays)+" WHERE song_id = 'S1' AND artist_id = 'A1'"))

	assert.Equal(t, int64(1), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Users)))
	assert.Equal(t, int64(7), queryInt(t, s, "SELECT user_id FROM "+q(schema.Users)))
	assert.Equal(t, int64(1), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Songs)))
	assert.Equal(t, int64(1), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Artists)))

	assert.Equal(t, int64(1), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Time)))
	assert.Equal(t, int64(21), queryInt(t, s, "SELECT hour FROM "+q(schema.Time)))
	assert.Equal(t, int64(1), queryInt(t, s, "SELECT day FROM "+q(schema.Time)))
	assert.Equal(t, int64(44), queryInt(t, s, "SELECT week FROM "+q(schema.Time)))
	assert.Equal(t, int64(11), queryInt(t, s, "SELECT month FROM "+q(schema.Time)))
	assert.Equal(t, int64(2018), queryInt(t, s, "SELECT year FROM "+q(schema.Time)))
	assert.Equal(t, int64(4), queryInt(t, s, "SELECT weekday FROM "+q(schema.Time)), "Thursday with Sunday = 0")
}

func TestEndToEnd_DuckDB(t *testing.T) {
	cfg := &dwhload.Config{
		S3: testinfra.WriteMuseFixtures(t, t.TempDir()),
		Warehouse: dwhload.WarehouseConfig{
			Dialect: dwhload.DialectDuckDB,
			Path:    ":memory:",
		},
	}
	b := newBuilder(t, cfg)

	s := runScenario(t, cfg, db.NewDuckDBConnector(cfg.Warehouse.Path))
	assertMuseScenario(t, s, b.Dialect().QuoteIdent)
}

func TestEndToEnd_DuckDB_DimensionKeysUnique(t *testing.T) {
	dir := t.TempDir()
	s3cfg := testinfra.WriteMuseFixtures(t, dir)
	// a second, later NextSong by the same user on the paid level, and a
	// duplicate song row
	testinfra.WriteFile(t, dir, "log_data/2018/11/2018-11-02-events.json",
		`{"artist":"Muse","page":"NextSong","level":"paid","sessionId":151,"ts":1541193600000,"userId":"7","song":"Uprising"}
{"artist":"Nobody","page":"NextSong","level":"free","sessionId":152,"ts":1541193700000,"userId":"8","song":"Silence"}
{"artist":"Muse","page":"Home","level":"free","sessionId":153,"ts":1541193800000,"userId":"9"}
`)
	testinfra.WriteFile(t, dir, "song_data/A/A/B/TRAAABB128F4291235.json",
		`{"artist_id":"A1","artist_name":"Muse","song_id":"S1","title":"Uprising","duration":305.3,"year":2009}
{"artist_id":"A2","artist_name":"Other","song_id":null,"title":"Nameless"}
`)

	path := filepath.Join(dir, "dwh.duckdb")
	cfg := &dwhload.Config{S3: s3cfg, Warehouse: dwhload.WarehouseConfig{Dialect: dwhload.DialectDuckDB, Path: path}}
	q := newBuilder(t, cfg).Dialect().QuoteIdent

	s := runScenario(t, cfg, db.NewDuckDBConnector(path))

	assert.Equal(t, int64(0), queryInt(t, s, "SELECT COUNT(*) - COUNT(DISTINCT user_id) FROM "+q(schema.Users)))
	assert.Equal(t, int64(0), queryInt(t, s, "SELECT COUNT(*) - COUNT(DISTINCT song_id) FROM "+q(schema.Songs)))
	assert.Equal(t, int64(0), queryInt(t, s, "SELECT COUNT(*) - COUNT(DISTINCT artist_id) FROM "+q(schema.Artists)))
	assert.Equal(t, int64(0), queryInt(t, s, "SELECT COUNT(*) - COUNT(DISTINCT start_time) FROM "+q(schema.Time)))

	// latest event wins for users
	assert.Equal(t, int64(1), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Users)+" WHERE user_id = 7 AND level = 'paid'"))
	// user 9 only visited Home; user 8 has a NextSong
	assert.Equal(t, int64(2), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Users)))

	// two Muse plays join the song catalogue; "Nobody" has no match
	assert.Equal(t, int64(2), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Songplays)))
	assert.Equal(t, int64(0), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Songplays)+" WHERE user_id = 8"))

	// null song_id rows are excluded, the artist row is kept
	assert.Equal(t, int64(1), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Songs)))
	assert.Equal(t, int64(2), queryInt(t, s, "SELECT COUNT(*) FROM "+q(schema.Artists)))

	// songplay ids are 0..n-1
	assert.Equal(t, int64(1), queryInt(t, s, "SELECT MAX(songplay_id) FROM "+q(schema.Songplays)))
}

func TestCreateTables_DuckDB_FailsOverExistingTables(t *testing.T) {
	ctx := context.Background()
	cfg := &dwhload.Config{Warehouse: dwhload.WarehouseConfig{Dialect: dwhload.DialectDuckDB, Path: ":memory:"}}

	session, err := db.NewDuckDBConnector(cfg.Warehouse.Path).Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	m := NewSchemaManager(newBuilder(t, cfg), &mockApprover{approved: true}, dwhload.NopObserver{}, &mockLogger{})
	require.NoError(t, m.CreateTables(ctx, session))

	err = m.CreateTables(ctx, session)
	require.Error(t, err, "creates only succeed after the drops")
	assert.ErrorIs(t, err, dwhload.ErrSchema)

	var stmtErr *dwhload.StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, schema.StagingEvents, stmtErr.Statement.Table)
}
