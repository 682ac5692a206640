package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// OpenPostgres connects to an existing database. The routes and
// price_history tables are owned by the deployment, not created here.
func OpenPostgres(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, dialectPostgres)
}
