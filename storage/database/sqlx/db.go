// Package sqlxrepos implements the storage repositories on PostgreSQL
// via sqlx. Every call runs under a bounded deadline from configuration.
package sqlxrepos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// NewDB wraps an open connection for the repositories.
func NewDB(db *sql.DB, driverName string) *sqlx.DB {
	return sqlx.NewDb(db, driverName)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
