package database

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dataSourceName, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dataSourceName+sep+"_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS doc_tables (
		name TEXT NOT NULL PRIMARY KEY,
		key_attr TEXT NOT NULL,
		indexes_json TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS doc_items (
		table_name TEXT NOT NULL REFERENCES doc_tables(name) ON DELETE CASCADE,
		item_key TEXT NOT NULL,
		-- Whole item as a JSON object
		body TEXT NOT NULL,
		PRIMARY KEY (table_name, item_key)
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
