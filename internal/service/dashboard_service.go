package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/iyhunko/inventory-dashboard/internal/cache"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

// SyncDashboard creates the snapshot of product on first sight, otherwise refreshes its
// descriptive fields. The projection's counters are never taken from the product once created.
func SyncDashboard(ctx context.Context, repo repository.DashboardRepository, product *model.Product, now time.Time) (*model.DashboardProduct, error) {
	snapshot, err := repo.FindByOriginalID(ctx, product.Owner, product.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		snapshot = model.NewDashboardProduct(product, now)
		if _, err := repo.Create(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("failed to create dashboard snapshot: %w", err)
		}
		return snapshot, nil
	case err != nil:
		return nil, err
	}

	snapshot.SyncFrom(product, now)
	if err := repo.Update(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to sync dashboard snapshot: %w", err)
	}
	return snapshot, nil
}

// ApplySale adds the sold units of sale to the snapshot of its product. The snapshot must exist.
func ApplySale(ctx context.Context, repo repository.DashboardRepository, sale *model.Sale, now time.Time) (*model.DashboardProduct, error) {
	snapshot, err := repo.FindByOriginalID(ctx, sale.Owner, sale.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard snapshot: %w", err)
	}

	snapshot.ApplySale(sale.Quantity, now)
	if err := repo.Update(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to apply sale to dashboard: %w", err)
	}
	return snapshot, nil
}

// DashboardService reads the dashboard projection.
type DashboardService struct {
	dashboard repository.DashboardRepository
	cache     cache.Cache
}

// NewDashboardService creates a DashboardService. A nil cache disables caching.
func NewDashboardService(dashboard repository.DashboardRepository, c cache.Cache) *DashboardService {
	if c == nil {
		c = cache.Noop{}
	}
	return &DashboardService{dashboard: dashboard, cache: c}
}

// List returns the owner's snapshots, most recently changed first. Inactive ones are only
// included when showInactive is set.
func (s *DashboardService) List(ctx context.Context, owner string, showInactive bool) ([]*model.DashboardProduct, error) {
	key := cache.Key(owner, "dashboard", strconv.FormatBool(showInactive))
	return cache.Fetch(ctx, s.cache, key, func() ([]*model.DashboardProduct, error) {
		products, err := s.dashboard.List(ctx, owner, showInactive)
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []*model.DashboardProduct{}
		}
		return products, nil
	})
}
