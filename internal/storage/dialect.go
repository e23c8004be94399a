package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Drivers understood by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongodb"
)

// dialect holds the few places where the SQL backends disagree.
type dialect struct {
	name     string
	driver   string // database/sql driver name
	idType   string
	textType string
	realType string
	boolType string
	dollar   bool // $1 placeholders instead of ?
	// ifNotExistsIndex is false when CREATE INDEX has no IF NOT EXISTS.
	ifNotExistsIndex bool
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name: DriverSQLite, driver: "sqlite",
		idType: "TEXT", textType: "TEXT", realType: "REAL", boolType: "INTEGER",
		ifNotExistsIndex: true,
	},
	DriverPostgres: {
		name: DriverPostgres, driver: "postgres",
		idType: "TEXT", textType: "TEXT", realType: "DOUBLE PRECISION", boolType: "BOOLEAN",
		dollar: true, ifNotExistsIndex: true,
	},
	DriverMySQL: {
		name: DriverMySQL, driver: "mysql",
		idType: "VARCHAR(64)", textType: "LONGTEXT", realType: "DOUBLE", boolType: "BOOLEAN",
	},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported driver: %s", name)
	}
	return d, nil
}

// KnownDriver reports whether Open accepts name.
func KnownDriver(name string) bool {
	if name == DriverMongo {
		return true
	}
	_, ok := dialects[name]
	return ok
}

// Drivers lists every accepted driver name.
func Drivers() []string {
	return []string{DriverSQLite, DriverPostgres, DriverMySQL, DriverMongo}
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) createIndex(name, table, cols string) string {
	if d.ifNotExistsIndex {
		return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", name, table, cols)
	}
	return fmt.Sprintf("CREATE INDEX %s ON %s(%s)", name, table, cols)
}

func (d dialect) migrations() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS scenes (
			id %[1]s PRIMARY KEY,
			name %[2]s NOT NULL,
			metadata_json %[2]s NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`, d.idType, d.textType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS scene_blocks (
			scene_id %[1]s NOT NULL,
			id %[1]s NOT NULL,
			seq INTEGER NOT NULL,
			type %[2]s NOT NULL,
			x %[3]s NOT NULL,
			y %[3]s NOT NULL,
			width %[3]s NOT NULL,
			height %[3]s NOT NULL,
			z_index INTEGER NOT NULL,
			parent_id %[2]s NOT NULL,
			content %[2]s NOT NULL,
			locked %[4]s NOT NULL,
			visible %[4]s NOT NULL,
			PRIMARY KEY (scene_id, id)
		)`, d.idType, d.textType, d.realType, d.boolType),
		d.createIndex("idx_scene_blocks_scene", "scene_blocks", "scene_id, seq"),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS scene_revisions (
			id %[1]s PRIMARY KEY,
			scene_id %[1]s NOT NULL,
			seq BIGINT NOT NULL,
			label %[2]s NOT NULL,
			snapshot_json %[2]s NOT NULL,
			created_at BIGINT NOT NULL
		)`, d.idType, d.textType),
		d.createIndex("idx_scene_revisions_scene", "scene_revisions", "scene_id, seq"),
	}
}

// ignorable reports migration errors that mean the object already exists.
func ignorable(stmt string, err error) bool {
	return strings.HasPrefix(stmt, "CREATE INDEX") && strings.Contains(err.Error(), "Duplicate key name")
}
