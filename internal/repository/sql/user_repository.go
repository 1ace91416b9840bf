package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

// UserRepository implements repository.UserRepository on Postgres.
type UserRepository struct {
	conn
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{conn: conn{db: db}}
}

// Create inserts a new user. A taken username yields *repository.UniqueConstraintError.
func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if user.ID == uuid.Nil {
		user.InitMeta()
	}

	query := `INSERT INTO users (id, username, password_hash, disabled, created_at, updated_at) 
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, query, user.ID, user.Username, user.PasswordHash, user.Disabled, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if detail, ok := uniqueViolation(err); ok {
			return nil, &repository.UniqueConstraintError{Detail: detail}
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// FindByUsername retrieves a single user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, password_hash, disabled, created_at, updated_at FROM users WHERE username = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var result model.User
	err = stmt.QueryRowContext(ctx, username).Scan(
		&result.ID, &result.Username, &result.PasswordHash, &result.Disabled, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &result, nil
}
