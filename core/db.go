package core

import (
	"context"
	"database/sql"
	"time"
)

type (
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		Begin() (*sql.Tx, error)
		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// DBContext returns a Context carrying the configured store-call deadline.
// The remote store has no timeout policy of its own; every outbound call
// must run under this bounded deadline.
func DBContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	timeout := 5 * time.Second
	if Conf != nil && Conf.Database.Timeout > 0 {
		timeout = Conf.Database.Timeout
	}
	return context.WithTimeout(parent, timeout)
}

// RetryRead retries an idempotent read once after a short backoff.
// An optional `permanent` predicate marks errors not worth retrying
// (e.g. not-found sentinels). Writes are never retried; payment inserts
// rely on a deduplication key instead.
func RetryRead(fn func() error, permanent ...func(error) bool) error {
	err := fn()
	if err == nil {
		return nil
	}
	if len(permanent) > 0 && permanent[0](err) {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return fn()
}
