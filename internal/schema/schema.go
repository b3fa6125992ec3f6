// Package schema describes the staging and star-schema tables as data.
// DDL rendering and client-side value coercion are both derived from it.
package schema

import "fmt"

// Table names, in the order every statement list uses.
const (
	StagingEvents = "staging_events"
	StagingSongs  = "staging_songs"
	Songplays     = "songplays"
	Users         = "users"
	Songs         = "songs"
	Artists       = "artists"
	Time          = "time"
)

// TableOrder is the fixed order of the drop, create and count lists.
var TableOrder = []string{StagingEvents, StagingSongs, Songplays, Users, Songs, Artists, Time}

// StagingOrder is the order of the bulk loads.
var StagingOrder = []string{StagingEvents, StagingSongs}

// TransformOrder is the order of the final-table inserts.
var TransformOrder = []string{Songplays, Users, Songs, Artists, Time}

// ColumnType is the logical type of a column.
type ColumnType int

const (
	Varchar ColumnType = iota
	Integer
	Decimal
	Timestamp
)

func (t ColumnType) String() string {
	switch t {
	case Varchar:
		return "VARCHAR"
	case Integer:
		return "INTEGER"
	case Decimal:
		return "DECIMAL"
	case Timestamp:
		return "TIMESTAMP"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column is one column definition.
type Column struct {
	Name string
	Type ColumnType

	// Length bounds VARCHAR columns; 0 means the engine default.
	Length int

	NotNull    bool
	PrimaryKey bool

	// Identity columns are generated by the warehouse, starting at 0 step 1.
	Identity bool

	// DistKey marks the distribution key on engines that have one.
	DistKey bool
}

// Table is a table definition.
type Table struct {
	Name    string
	Columns []Column
	Staging bool
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// WritableColumns returns the columns a client load writes, skipping identities.
func (t Table) WritableColumns() []Column {
	cols := make([]Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !c.Identity {
			cols = append(cols, c)
		}
	}
	return cols
}

// Options tweak the catalogue.
type Options struct {
	// StrictStagingKeys declares staging_songs.artist_id as PRIMARY KEY.
	StrictStagingKeys bool
}

// Catalog is the ordered set of tables.
type Catalog struct {
	tables []Table
}

// New builds the catalogue.
func New(opts Options) *Catalog {
	return &Catalog{tables: []Table{
		stagingEvents(),
		stagingSongs(opts.StrictStagingKeys),
		songplays(),
		users(),
		songs(),
		artists(),
		timeTable(),
	}}
}

// Tables returns the tables in TableOrder.
func (c *Catalog) Tables() []Table {
	out := make([]Table, len(c.tables))
	copy(out, c.tables)
	return out
}

// Lookup returns the named table.
func (c *Catalog) Lookup(name string) (Table, bool) {
	for _, t := range c.tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

func varchar(name string) Column { return Column{Name: name, Type: Varchar} }
func integer(name string) Column { return Column{Name: name, Type: Integer} }
func decimal(name string) Column { return Column{Name: name, Type: Decimal} }

func stagingEvents() Table {
	return Table{
		Name:    StagingEvents,
		Staging: true,
		Columns: []Column{
			varchar("artist"),
			varchar("auth"),
			varchar("first_name"),
			{Name: "gender", Type: Varchar, Length: 1},
			integer("item_in_session"),
			varchar("last_name"),
			decimal("length"),
			varchar("level"),
			varchar("location"),
			varchar("method"),
			varchar("page"),
			varchar("registration"),
			integer("session_id"),
			varchar("song"),
			integer("status"),
			{Name: "ts", Type: Timestamp},
			varchar("user_agent"),
			integer("user_id"),
		},
	}
}

func stagingSongs(strict bool) Table {
	return Table{
		Name:    StagingSongs,
		Staging: true,
		Columns: []Column{
			{Name: "artist_id", Type: Varchar, NotNull: true, PrimaryKey: strict},
			decimal("artist_latitude"),
			varchar("artist_location"),
			decimal("artist_longitude"),
			varchar("artist_name"),
			decimal("duration"),
			integer("num_songs"),
			varchar("song_id"),
			varchar("title"),
			integer("year"),
		},
	}
}

func songplays() Table {
	return Table{
		Name: Songplays,
		Columns: []Column{
			{Name: "songplay_id", Type: Integer, NotNull: true, PrimaryKey: true, Identity: true},
			{Name: "start_time", Type: Timestamp},
			{Name: "user_id", Type: Integer, NotNull: true, DistKey: true},
			varchar("level"),
			{Name: "song_id", Type: Varchar, Length: 18, NotNull: true},
			{Name: "artist_id", Type: Varchar, Length: 18, NotNull: true},
			{Name: "session_id", Type: Integer, NotNull: true},
			varchar("location"),
			varchar("user_agent"),
		},
	}
}

func users() Table {
	return Table{
		Name: Users,
		Columns: []Column{
			{Name: "user_id", Type: Integer, NotNull: true, PrimaryKey: true},
			varchar("first_name"),
			varchar("last_name"),
			{Name: "gender", Type: Varchar, Length: 1},
			varchar("level"),
		},
	}
}

func songs() Table {
	return Table{
		Name: Songs,
		Columns: []Column{
			{Name: "song_id", Type: Varchar, Length: 18, NotNull: true, PrimaryKey: true},
			varchar("title"),
			{Name: "artist_id", Type: Varchar, Length: 18, NotNull: true},
			integer("year"),
			decimal("duration"),
		},
	}
}

func artists() Table {
	return Table{
		Name: Artists,
		Columns: []Column{
			{Name: "artist_id", Type: Varchar, Length: 18, NotNull: true, PrimaryKey: true},
			varchar("name"),
			varchar("location"),
			decimal("latitude"),
			decimal("longitude"),
		},
	}
}

func timeTable() Table {
	notNull := func(name string) Column { return Column{Name: name, Type: Integer, NotNull: true} }
	return Table{
		Name: Time,
		Columns: []Column{
			{Name: "start_time", Type: Timestamp, NotNull: true, PrimaryKey: true},
			notNull("hour"),
			notNull("day"),
			notNull("week"),
			notNull("month"),
			notNull("year"),
			notNull("weekday"),
		},
	}
}
