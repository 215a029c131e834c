package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
)

// TxAttempts bounds how often a transaction that lost a lock or a
// serialization conflict is retried.
var TxAttempts = 3

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
	Rebind(string) string
}

func get(ctx context.Context, q queryer, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
}

func sel(ctx context.Context, q queryer, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func exec(ctx context.Context, q queryer, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, q.Rebind(query), args...)
}

// insertID runs an INSERT ... RETURNING id and returns the new id.
func insertID(ctx context.Context, q queryer, query string, args ...any) (int64, error) {
	var id int64
	if err := get(ctx, q, &id, query+` RETURNING id`, args...); err != nil {
		return 0, err
	}
	return id, nil
}

// withTx runs fn in a transaction and commits it. Lock and serialization
// failures restart fn with exponential backoff, at most TxAttempts times.
// Any other error is returned as is.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	var opts *sql.TxOptions
	if db.DriverName() == "pgx" {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	op := func() error {
		tx, err := db.BeginTxx(ctx, opts)
		if err != nil {
			return retryable(fmt.Errorf("beginning transaction: %w", err))
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return retryable(err)
		}
		if err := tx.Commit(); err != nil {
			return retryable(fmt.Errorf("committing transaction: %w", err))
		}
		return nil
	}

	attempts := TxAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))
}

// retryable marks err permanent unless it is a lock or serialization failure.
func retryable(err error) error {
	if isRetryable(err) {
		return err
	}
	return backoff.Permanent(err)
}
