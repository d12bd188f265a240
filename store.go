package ekidata2sql

import (
	"context"
)

// Store is a destination database.
type Store interface {
	// Recreate destroys the destination database if it exists and creates it again with
	// the five ekidata tables. All prior data is lost.
	Recreate(ctx context.Context) error
	// Begin opens the single write session of a load run.
	Begin(ctx context.Context) (Session, error)
	Close() error
}

// Session is an open transaction against a Store. Nothing is durable until Commit.
type Session interface {
	// Insert stages one row. Rejections by the store wrap ErrConstraint.
	Insert(ctx context.Context, table string, columns []string, values []any) error
	// Exists reports whether a row with column = value is visible to the session,
	// including rows staged by it.
	Exists(ctx context.Context, table, column string, value any) (bool, error)
	Commit() error
	Rollback() error
}
