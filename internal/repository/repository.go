package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
)

// ErrNotFound is returned when a row is absent or is not owned by the caller.
var ErrNotFound = errors.New("not found")

// ProductRepository manages the live product table. Every lookup is scoped by owner.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	FindByID(ctx context.Context, owner string, id uuid.UUID) (*model.Product, error)
	// FindByIDForUpdate loads the product and locks its row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, owner string, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, query Query) ([]*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	DeleteByID(ctx context.Context, owner string, id uuid.UUID) error
	ListCategories(ctx context.Context, owner string) ([]string, error)
	RepriceUSD(ctx context.Context, rate float64) (int64, error)
}

// SaleRepository manages the sales ledger.
type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) (*model.Sale, error)
	// List returns the owner's sales newest first.
	List(ctx context.Context, query Query) ([]*model.Sale, error)
	DeleteByOwner(ctx context.Context, owner string) (int64, error)
}

// DashboardRepository manages the dashboard projection.
type DashboardRepository interface {
	FindByOriginalID(ctx context.Context, owner string, originalID uuid.UUID) (*model.DashboardProduct, error)
	Create(ctx context.Context, product *model.DashboardProduct) (*model.DashboardProduct, error)
	Update(ctx context.Context, product *model.DashboardProduct) error
	List(ctx context.Context, owner string, showInactive bool) ([]*model.DashboardProduct, error)
	RepriceUSD(ctx context.Context, rate float64) (int64, error)
}

// HistoryRepository manages the product history audit log.
type HistoryRepository interface {
	Create(ctx context.Context, entry *model.ProductHistory) (*model.ProductHistory, error)
	// List returns the owner's entries newest first.
	List(ctx context.Context, query Query) ([]*model.ProductHistory, error)
}

// EventRepository manages the transactional outbox.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	ListPending(ctx context.Context, limit int) ([]*model.Event, error)
	UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error
}

// UserRepository manages accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// ReportRepository reads sales joined with their dashboard snapshot, oldest first.
type ReportRepository interface {
	SaleLines(ctx context.Context, query Query) ([]model.SaleLine, error)
}

// Store groups the repositories that take part in one unit of work.
type Store interface {
	Products() ProductRepository
	Sales() SaleRepository
	Dashboard() DashboardRepository
	Events() EventRepository
}

// Transactor runs fn with a Store whose repositories share one transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(store Store) error) error
}

// UniqueConstraintError represents a database unique constraint violation error.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}
