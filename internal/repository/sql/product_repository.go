package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
	"github.com/lib/pq"
)

const productColumns = "id, owner, description, image_url, quantity, suggested_quantity, price_brl, price_usd, status, categories, created_at, updated_at"

// ProductRepository implements repository.ProductRepository on Postgres.
type ProductRepository struct {
	conn
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{conn: conn{db: db}}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	// Only initialize metadata if not already set
	if product.ID == uuid.Nil {
		product.InitMeta()
	}

	query := `INSERT INTO products (` + productColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.exec(ctx, query,
		product.ID, product.Owner, product.Description, product.ImageURL,
		product.Quantity, product.SuggestedQuantity, product.PriceBRL, product.PriceUSD,
		product.Status, pq.Array(product.Categories), product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return product, nil
}

// FindByID retrieves a single product owned by owner.
func (r *ProductRepository) FindByID(ctx context.Context, owner string, id uuid.UUID) (*model.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND owner = $2`, owner, id)
}

// FindByIDForUpdate retrieves a product and locks its row for the rest of the transaction.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, owner string, id uuid.UUID) (*model.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND owner = $2 FOR UPDATE`, owner, id)
}

func (r *ProductRepository) findOne(ctx context.Context, query, owner string, id uuid.UUID) (*model.Product, error) {
	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return product, nil
}

// List retrieves the owner's products, newest first, filtered by description and categories.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products WHERE owner = $1")

	args := []interface{}{query.Get(repository.OwnerField)}
	argIndex := 2

	if description := query.Get(repository.DescriptionField); description != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND description ILIKE '%%' || $%d || '%%'", argIndex))
		args = append(args, description)
		argIndex++
	}

	if categories := splitList(query.Get(repository.CategoriesField)); len(categories) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND categories && $%d", argIndex))
		args = append(args, pq.Array(categories))
		argIndex++
	}

	// Apply pagination
	if query.Paginator != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1))
		args = append(args, query.Paginator.LastTimestamp, query.Paginator.LastID)
		argIndex += 2
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	if query.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
		args = append(args, query.Limit)
	}

	stmt, err := r.getExecutor().PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// Update overwrites every mutable column of the product.
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now().UTC()

	query := `UPDATE products SET description = $1, image_url = $2, quantity = $3, suggested_quantity = $4,
	          price_brl = $5, price_usd = $6, status = $7, categories = $8, updated_at = $9
	          WHERE id = $10 AND owner = $11`

	rowsAffected, err := r.exec(ctx, query,
		product.Description, product.ImageURL, product.Quantity, product.SuggestedQuantity,
		product.PriceBRL, product.PriceUSD, product.Status, pq.Array(product.Categories), product.UpdatedAt,
		product.ID, product.Owner)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found: %w", repository.ErrNotFound)
	}

	return nil
}

// DeleteByID deletes a product owned by owner.
func (r *ProductRepository) DeleteByID(ctx context.Context, owner string, id uuid.UUID) error {
	rowsAffected, err := r.exec(ctx, `DELETE FROM products WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found: %w", repository.ErrNotFound)
	}

	return nil
}

// ListCategories returns the distinct categories used by the owner's products, sorted.
func (r *ProductRepository) ListCategories(ctx context.Context, owner string) ([]string, error) {
	query := `SELECT DISTINCT TRIM(category) AS category
	          FROM products, UNNEST(categories) AS category
	          WHERE owner = $1 AND TRIM(category) <> ''
	          ORDER BY category`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

// RepriceUSD recomputes price_usd of every product from the given rate.
func (r *ProductRepository) RepriceUSD(ctx context.Context, rate float64) (int64, error) {
	rowsAffected, err := r.exec(ctx,
		`UPDATE products SET price_usd = ROUND(price_brl / $1::numeric, 2), updated_at = $2`,
		rate, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to reprice products: %w", err)
	}
	return rowsAffected, nil
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Owner, &p.Description, &p.ImageURL, &p.Quantity, &p.SuggestedQuantity,
		&p.PriceBRL, &p.PriceUSD, &p.Status, pq.Array(&p.Categories), &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// splitList splits a comma separated filter value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
