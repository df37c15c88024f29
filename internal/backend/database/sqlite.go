package database

import (
	"database/sql"
	"errors"

	"modernc.org/sqlite"
)

// sqliteConstraint is the primary result code SQLITE_CONSTRAINT; extended codes keep it in the low byte.
const sqliteConstraint = 19

var sqliteDialect = dialect{
	name: TypeSQLite,
	schema: `CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		image_url TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	isConstraintViolation: func(err error) bool {
		var sqliteErr *sqlite.Error
		return errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqliteConstraint
	},
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	return &sqlDatabase{
		db:      db,
		dialect: sqliteDialect,
	}, nil
}
