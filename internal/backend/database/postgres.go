package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// integrity_constraint_violation
const postgresConstraintClass = "23"

var postgresDialect = dialect{
	name: TypePostgres,
	schema: `CREATE TABLE IF NOT EXISTS images (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		image_url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	numberedPlaceholders: true,
	isConstraintViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code.Class() == postgresConstraintClass
	},
}

func NewPostgresDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	return &sqlDatabase{
		db:      db,
		dialect: postgresDialect,
	}, nil
}
