package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens the development store at path and creates its tables.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := createSQLiteTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return newSQLStore(db, dialectSQLite), nil
}

func createSQLiteTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS routes (
			id TEXT PRIMARY KEY,
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			departure_date TEXT NOT NULL,
			cabin_class TEXT NOT NULL,
			currency TEXT NOT NULL,
			current_price REAL
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id TEXT PRIMARY KEY,
			route_id TEXT NOT NULL REFERENCES routes(id),
			observed_at INTEGER NOT NULL,
			amount REAL NOT NULL,
			currency TEXT NOT NULL,
			score REAL,
			explanation TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_route ON price_history (route_id, observed_at)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}
