package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
	"github.com/lib/pq"
)

const dashboardColumns = "id, original_id, owner, description, image_url, initial_quantity, sold_quantity, current_quantity, " +
	"suggested_quantity, price_brl, price_usd, status, categories, last_update, is_active"

// DashboardRepository implements repository.DashboardRepository on Postgres.
type DashboardRepository struct {
	conn
}

// NewDashboardRepository creates a new DashboardRepository instance.
func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{conn: conn{db: db}}
}

// FindByOriginalID retrieves the owner's snapshot of the given product.
func (r *DashboardRepository) FindByOriginalID(ctx context.Context, owner string, originalID uuid.UUID) (*model.DashboardProduct, error) {
	query := `SELECT ` + dashboardColumns + ` FROM dashboard_products WHERE original_id = $1 AND owner = $2`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	d, err := scanDashboardProduct(stmt.QueryRowContext(ctx, originalID, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("dashboard product not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query dashboard product: %w", err)
	}

	return d, nil
}

// Create inserts a new snapshot.
func (r *DashboardRepository) Create(ctx context.Context, d *model.DashboardProduct) (*model.DashboardProduct, error) {
	if d.ID == uuid.Nil {
		d.InitMeta()
	}

	query := `INSERT INTO dashboard_products (` + dashboardColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.exec(ctx, query,
		d.ID, d.OriginalID, d.Owner, d.Description, d.ImageURL, d.InitialQuantity, d.SoldQuantity,
		d.CurrentQuantity, d.SuggestedQuantity, d.PriceBRL, d.PriceUSD, d.Status,
		pq.Array(d.Categories), d.LastUpdate, d.IsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to insert dashboard product: %w", err)
	}

	return d, nil
}

// Update overwrites the snapshot identified by its ID.
func (r *DashboardRepository) Update(ctx context.Context, d *model.DashboardProduct) error {
	query := `UPDATE dashboard_products SET description = $1, image_url = $2, initial_quantity = $3,
	          sold_quantity = $4, current_quantity = $5, suggested_quantity = $6, price_brl = $7,
	          price_usd = $8, status = $9, categories = $10, last_update = $11, is_active = $12
	          WHERE id = $13 AND owner = $14`

	rowsAffected, err := r.exec(ctx, query,
		d.Description, d.ImageURL, d.InitialQuantity, d.SoldQuantity, d.CurrentQuantity,
		d.SuggestedQuantity, d.PriceBRL, d.PriceUSD, d.Status, pq.Array(d.Categories),
		d.LastUpdate, d.IsActive, d.ID, d.Owner)
	if err != nil {
		return fmt.Errorf("failed to update dashboard product: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("dashboard product not found: %w", repository.ErrNotFound)
	}

	return nil
}

// List returns the owner's snapshots, most recently updated first.
func (r *DashboardRepository) List(ctx context.Context, owner string, showInactive bool) ([]*model.DashboardProduct, error) {
	query := `SELECT ` + dashboardColumns + ` FROM dashboard_products WHERE owner = $1`
	if !showInactive {
		query += ` AND is_active`
	}
	query += ` ORDER BY last_update DESC, id DESC`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard products: %w", err)
	}
	defer rows.Close()

	var products []*model.DashboardProduct
	for rows.Next() {
		d, err := scanDashboardProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dashboard product: %w", err)
		}
		products = append(products, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// RepriceUSD recomputes price_usd of every snapshot from the given rate.
func (r *DashboardRepository) RepriceUSD(ctx context.Context, rate float64) (int64, error) {
	rowsAffected, err := r.exec(ctx,
		`UPDATE dashboard_products SET price_usd = ROUND(price_brl / $1::numeric, 2), last_update = $2`,
		rate, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to reprice dashboard products: %w", err)
	}
	return rowsAffected, nil
}

func scanDashboardProduct(row rowScanner) (*model.DashboardProduct, error) {
	var d model.DashboardProduct
	err := row.Scan(
		&d.ID, &d.OriginalID, &d.Owner, &d.Description, &d.ImageURL, &d.InitialQuantity, &d.SoldQuantity,
		&d.CurrentQuantity, &d.SuggestedQuantity, &d.PriceBRL, &d.PriceUSD, &d.Status,
		pq.Array(&d.Categories), &d.LastUpdate, &d.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
