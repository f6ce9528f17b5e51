package sqlite

// Schema DDL for the snapshot tables.
const (
	createTables = `CREATE TABLE IF NOT EXISTS pantry_tables (
    name TEXT PRIMARY KEY,
    schema TEXT NOT NULL,
    sequence INTEGER NOT NULL DEFAULT 0
);`

	createRows = `CREATE TABLE IF NOT EXISTS pantry_rows (
    table_name TEXT NOT NULL,
    position INTEGER NOT NULL,
    record TEXT NOT NULL,
    PRIMARY KEY (table_name, position),
    FOREIGN KEY (table_name) REFERENCES pantry_tables(name) ON DELETE CASCADE
);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createTables,
	createRows,
}
