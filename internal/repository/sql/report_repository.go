package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ReportRepository reads the sales ledger for analytics.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository wraps db for struct scanning. driverName only selects the bind style.
func NewReportRepository(db *sql.DB, driverName string) *ReportRepository {
	return &ReportRepository{db: sqlx.NewDb(db, driverName)}
}

type saleLineRow struct {
	SaleID      uuid.UUID      `db:"sale_id"`
	ProductID   uuid.UUID      `db:"product_id"`
	Description string         `db:"description"`
	Categories  pq.StringArray `db:"categories"`
	Quantity    int            `db:"quantity"`
	ValueBRL    float64        `db:"sale_value_brl"`
	SaleDate    time.Time      `db:"sale_date"`
}

// SaleLines returns the owner's sales in the query range, oldest first, joined with the
// dashboard snapshot of the product. Sales of products without a snapshot keep an empty
// description and no categories.
func (r *ReportRepository) SaleLines(ctx context.Context, query repository.Query) ([]model.SaleLine, error) {
	var b strings.Builder
	b.WriteString(`SELECT s.id AS sale_id, s.product_id, COALESCE(d.description, '') AS description,
	       COALESCE(d.categories, '{}') AS categories, s.quantity, s.sale_value_brl, s.sale_date
	  FROM sales s
	  LEFT JOIN dashboard_products d ON d.original_id = s.product_id AND d.owner = s.owner
	 WHERE s.owner = $1`)

	args := []interface{}{query.Get(repository.OwnerField)}
	argIndex := 2
	if query.From != nil {
		b.WriteString(fmt.Sprintf(" AND s.sale_date >= $%d", argIndex))
		args = append(args, *query.From)
		argIndex++
	}
	if query.To != nil {
		b.WriteString(fmt.Sprintf(" AND s.sale_date <= $%d", argIndex))
		args = append(args, *query.To)
	}
	b.WriteString(" ORDER BY s.sale_date ASC, s.id ASC")

	var rows []saleLineRow
	if err := r.db.SelectContext(ctx, &rows, b.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to query sale lines: %w", err)
	}

	lines := make([]model.SaleLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, model.SaleLine{
			SaleID:      row.SaleID,
			ProductID:   row.ProductID,
			Description: row.Description,
			Categories:  []string(row.Categories),
			Quantity:    row.Quantity,
			ValueBRL:    row.ValueBRL,
			SaleDate:    row.SaleDate,
		})
	}
	return lines, nil
}
