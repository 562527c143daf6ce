package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines transaction control for repositories that need
// multi-statement writes (e.g. the account-deletion cascade).
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
