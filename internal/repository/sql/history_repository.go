package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
	"github.com/lib/pq"
)

const (
	historyColumns = "id, original_id, owner, description, image_url, quantity, suggested_quantity, " +
		"price_brl, price_usd, status, categories, action, action_date, action_reason"

	defaultHistoryLimit = 100
)

// HistoryRepository implements repository.HistoryRepository on Postgres.
type HistoryRepository struct {
	conn
}

// NewHistoryRepository creates a new HistoryRepository instance.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{conn: conn{db: db}}
}

// Create appends an entry to the history.
func (r *HistoryRepository) Create(ctx context.Context, h *model.ProductHistory) (*model.ProductHistory, error) {
	if h.ID == uuid.Nil {
		h.InitMeta()
	}

	query := `INSERT INTO products_history (` + historyColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.exec(ctx, query,
		h.ID, h.OriginalID, h.Owner, h.Description, h.ImageURL, h.Quantity, h.SuggestedQuantity,
		h.PriceBRL, h.PriceUSD, h.Status, pq.Array(h.Categories), h.Action, h.ActionDate, h.ActionReason)
	if err != nil {
		return nil, fmt.Errorf("failed to insert history entry: %w", err)
	}

	return h, nil
}

// List retrieves the owner's entries newest first, optionally for one product and one action.
func (r *HistoryRepository) List(ctx context.Context, query repository.Query) ([]*model.ProductHistory, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + historyColumns + " FROM products_history WHERE owner = $1")

	args := []interface{}{query.Get(repository.OwnerField)}
	argIndex := 2

	if productID := query.Get(repository.ProductIDField); productID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND original_id = $%d", argIndex))
		args = append(args, productID)
		argIndex++
	}
	if action := query.Get(repository.ActionField); action != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND action = $%d", argIndex))
		args = append(args, action)
		argIndex++
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY action_date DESC, id DESC LIMIT $%d", argIndex))
	args = append(args, limit)

	stmt, err := r.getExecutor().PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*model.ProductHistory
	for rows.Next() {
		var h model.ProductHistory
		var reason sql.NullString
		err := rows.Scan(
			&h.ID, &h.OriginalID, &h.Owner, &h.Description, &h.ImageURL, &h.Quantity, &h.SuggestedQuantity,
			&h.PriceBRL, &h.PriceUSD, &h.Status, pq.Array(&h.Categories), &h.Action, &h.ActionDate, &reason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		h.ActionReason = reason.String
		entries = append(entries, &h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}
