package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
	DBExecutor interface {
		sqlx.ExtContext

		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	DB interface {
		DBExecutor

		// WithinTx runs fn in a single transaction; writers are serialised.
		// The transaction is rolled back if fn returns an error.
		WithinTx(ctx context.Context, fn func(tx DBExecutor) error) error
	}
)
