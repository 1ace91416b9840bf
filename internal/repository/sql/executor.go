package sql

import (
	"context"
	"database/sql"
	"fmt"
)

// dbExecutor is an interface that represents either *sql.DB or *sql.Tx.
type dbExecutor interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// conn holds the pool and, inside a unit of work, the open transaction.
type conn struct {
	db  *sql.DB
	txn *sql.Tx
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (c conn) getExecutor() dbExecutor {
	if c.txn != nil {
		return c.txn
	}
	return c.db
}

// exec prepares query on the active executor and executes it, returning the affected row count.
func (c conn) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	stmt, err := c.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}
