package service

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskmanager-api/internal/store"
)

// txRunner runs fn inside one database transaction.
type txRunner func(ctx context.Context, fn store.TxFn) error

func newTxRunner(db *sql.DB) txRunner {
	return func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, db, fn)
	}
}
