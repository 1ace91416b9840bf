package sql

import (
	"database/sql"

	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

// GetTxFromStore is a test helper to extract the transaction shared by a Store's repositories.
func GetTxFromStore(store repository.Store) *sql.Tx {
	s, ok := store.(txStore)
	if !ok {
		return nil
	}
	return s.c.txn
}

// GetTxFromProductRepo is a test helper to extract transaction from ProductRepository.
func GetTxFromProductRepo(repo repository.ProductRepository) *sql.Tx {
	return repo.(*ProductRepository).txn
}
