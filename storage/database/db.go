package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/alrowad/institute/core"
	appfs "github.com/alrowad/institute/fs"
)

// readyAttempts bounds how long bootstrap waits for the server; the
// backoff grows linearly per attempt.
const readyAttempts = 30

// dsn builds the connection URL. Bootstrap operations connect with the
// admin credentials when they are configured.
func dsn(dbName string, admin bool, conf *core.Config) string {
	creds := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		creds = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	q := make(url.Values)
	q.Set("sslmode", "require")
	if conf.Database.DisableTLS {
		q.Set("sslmode", "disable")
	}
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     creds,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the configured application database.
func Open(conf *core.Config) (*sql.DB, error) {
	return sql.Open(conf.Database.Engine, dsn(conf.Database.Name, false, conf))
}

func waitReady(db *sql.DB) error {
	var err error
	for attempt := 1; attempt <= readyAttempts; attempt++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "waiting for database")
}

func rowExists(db *sql.DB, query string, args ...interface{}) (bool, error) {
	var exists bool
	err := db.QueryRow(query, args...).Scan(&exists)
	return exists, err
}

func ensureAppRole(db *sql.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}
	exists, err := rowExists(db, "SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app role")
	}
	if exists {
		return nil
	}
	// role names cannot be bound parameters
	q := fmt.Sprintf("CREATE USER %s CREATEDB ENCRYPTED PASSWORD '%s'", conf.Database.User, conf.Database.Password)
	_, err = db.Exec(q)
	return errors.Wrap(err, "creating app role")
}

func ensureDB(db *sql.DB, conf *core.Config) error {
	exists, err := rowExists(db, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking database")
	}
	if exists {
		return nil
	}
	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", conf.Database.Name))
	return errors.Wrap(err, "creating database")
}

// CreateIfNotExist bootstraps the application role and database: it
// connects to the maintenance database with the admin credentials to
// create the role, then reconnects as that role so it owns the database
// it creates.
func CreateIfNotExist(conf *core.Config) error {
	admin, err := sql.Open(conf.Database.Engine, dsn("postgres", true, conf))
	if err != nil {
		return errors.Wrap(err, "opening maintenance database")
	}
	defer func() { _ = admin.Close() }()

	if err = waitReady(admin); err != nil {
		return err
	}
	if err = ensureAppRole(admin, conf); err != nil {
		return err
	}

	db, err := sql.Open(conf.Database.Engine, dsn("postgres", false, conf))
	if err != nil {
		return errors.Wrap(err, "opening maintenance database")
	}
	defer func() { _ = db.Close() }()
	return ensureDB(db, conf)
}

// Migrate applies the embedded migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(appfs.FS)
	return errors.Wrap(goose.Up(db, "migrations"), "migrating database")
}
