package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

const saleColumns = "id, product_id, owner, quantity, sale_date, sale_value_brl, sale_value_usd"

// SaleRepository implements repository.SaleRepository on Postgres.
type SaleRepository struct {
	conn
}

// NewSaleRepository creates a new SaleRepository instance.
func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{conn: conn{db: db}}
}

// Create appends a sale to the ledger. The sale date is assigned here.
func (r *SaleRepository) Create(ctx context.Context, sale *model.Sale) (*model.Sale, error) {
	if sale.ID == uuid.Nil {
		sale.InitMeta()
	}

	query := `INSERT INTO sales (` + saleColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, query,
		sale.ID, sale.ProductID, sale.Owner, sale.Quantity, sale.SaleDate, sale.SaleValueBRL, sale.SaleValueUSD)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	return sale, nil
}

// List retrieves the owner's sales newest first, bounded by the query time range and page.
func (r *SaleRepository) List(ctx context.Context, query repository.Query) ([]*model.Sale, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + saleColumns + " FROM sales WHERE owner = $1")

	args := []interface{}{query.Get(repository.OwnerField)}
	argIndex := 2

	if query.From != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND sale_date >= $%d", argIndex))
		args = append(args, *query.From)
		argIndex++
	}
	if query.To != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND sale_date <= $%d", argIndex))
		args = append(args, *query.To)
		argIndex++
	}

	if query.Paginator != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND (sale_date, id) < ($%d, $%d)", argIndex, argIndex+1))
		args = append(args, query.Paginator.LastTimestamp, query.Paginator.LastID)
		argIndex += 2
	}

	queryBuilder.WriteString(" ORDER BY sale_date DESC, id DESC")

	limit := query.Limit
	if limit <= 0 {
		limit = repository.DefaultPaginationLimit
	}
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
	args = append(args, limit)

	stmt, err := r.getExecutor().PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []*model.Sale
	for rows.Next() {
		var s model.Sale
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Owner, &s.Quantity, &s.SaleDate, &s.SaleValueBRL, &s.SaleValueUSD); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, &s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sales, nil
}

// DeleteByOwner removes every sale of the owner and returns how many were removed.
func (r *SaleRepository) DeleteByOwner(ctx context.Context, owner string) (int64, error) {
	rowsAffected, err := r.exec(ctx, `DELETE FROM sales WHERE owner = $1`, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sales: %w", err)
	}
	return rowsAffected, nil
}
