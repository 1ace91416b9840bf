package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

// TransactionalRepository runs units of work spanning several repositories in a single transaction.
type TransactionalRepository struct {
	db *sql.DB
}

// NewTransactionalRepository creates a new TransactionalRepository
func NewTransactionalRepository(db *sql.DB) *TransactionalRepository {
	return &TransactionalRepository{db: db}
}

// txStore hands out repositories bound to one transaction.
type txStore struct {
	c conn
}

func (s txStore) Products() repository.ProductRepository { return &ProductRepository{conn: s.c} }
func (s txStore) Sales() repository.SaleRepository { return &SaleRepository{conn: s.c} }
func (s txStore) Dashboard() repository.DashboardRepository { return &DashboardRepository{conn: s.c} }
func (s txStore) Events() repository.EventRepository { return &EventRepository{conn: s.c} }

// WithinTransaction executes fn within a database transaction. The transaction is committed when
// fn succeeds and rolled back otherwise; fn's error is returned unchanged so callers can match it.
func (tr *TransactionalRepository) WithinTransaction(ctx context.Context, fn func(store repository.Store) error) error {
	tx, err := tr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(txStore{c: conn{db: tr.db, txn: tx}}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
