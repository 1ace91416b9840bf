package service

import (
	"context"
	"strconv"
	"time"

	"github.com/iyhunko/inventory-dashboard/internal/analytics"
	"github.com/iyhunko/inventory-dashboard/internal/cache"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

// DateRange bounds a report. Nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) key() string {
	return formatBound(r.From) + "_" + formatBound(r.To)
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "*"
	}
	return t.UTC().Format(time.RFC3339)
}

// SalesPage is one page of the sales ledger.
type SalesPage struct {
	Sales []*model.Sale
	// NextToken resumes after the last sale of this page. It is empty on the last page.
	NextToken string
}

// SalesService reads the sales ledger and builds the sales reports.
type SalesService struct {
	sales   repository.SaleRepository
	reports repository.ReportRepository
	cache   cache.Cache
}

// NewSalesService creates a SalesService. A nil cache disables caching.
func NewSalesService(sales repository.SaleRepository, reports repository.ReportRepository, c cache.Cache) *SalesService {
	if c == nil {
		c = cache.Noop{}
	}
	return &SalesService{sales: sales, reports: reports, cache: c}
}

// History returns the owner's sales newest first, one page at a time.
func (s *SalesService) History(ctx context.Context, owner string, dates DateRange, limit int32, token string) (*SalesPage, error) {
	query := repository.NewQuery().With(repository.OwnerField, owner).Between(dates.From, dates.To)
	if err := query.ApplyPagination(limit, token); err != nil {
		return nil, err
	}

	sales, err := s.sales.List(ctx, *query)
	if err != nil {
		return nil, err
	}

	page := &SalesPage{Sales: sales}
	if page.Sales == nil {
		page.Sales = []*model.Sale{}
	}
	if len(sales) > 0 && len(sales) == query.Limit {
		last := sales[len(sales)-1]
		page.NextToken = repository.Paginator{LastID: last.ID, LastTimestamp: last.SaleDate}.Encode()
	}
	return page, nil
}

// TopProducts returns the n best selling products by units in the range.
func (s *SalesService) TopProducts(ctx context.Context, owner string, dates DateRange, n int) ([]analytics.TopProduct, error) {
	if n <= 0 {
		n = analytics.DefaultTopN
	}
	key := cache.Key(owner, "sales", "top", dates.key(), strconv.Itoa(n))
	return cache.Fetch(ctx, s.cache, key, func() ([]analytics.TopProduct, error) {
		lines, err := s.lines(ctx, owner, dates)
		if err != nil {
			return nil, err
		}
		return analytics.TopProducts(lines, n), nil
	})
}

// Trend returns revenue per day in the range, oldest day first.
func (s *SalesService) Trend(ctx context.Context, owner string, dates DateRange) ([]analytics.DailyRevenue, error) {
	key := cache.Key(owner, "sales", "trend", dates.key())
	return cache.Fetch(ctx, s.cache, key, func() ([]analytics.DailyRevenue, error) {
		lines, err := s.lines(ctx, owner, dates)
		if err != nil {
			return nil, err
		}
		return analytics.RevenueByDay(lines), nil
	})
}

// ByCategory returns revenue per first category in the range.
func (s *SalesService) ByCategory(ctx context.Context, owner string, dates DateRange) ([]analytics.CategoryRevenue, error) {
	key := cache.Key(owner, "sales", "category", dates.key())
	return cache.Fetch(ctx, s.cache, key, func() ([]analytics.CategoryRevenue, error) {
		lines, err := s.lines(ctx, owner, dates)
		if err != nil {
			return nil, err
		}
		return analytics.RevenueByCategory(lines), nil
	})
}

// Reset deletes every sale of owner and returns how many were removed.
func (s *SalesService) Reset(ctx context.Context, owner string) (int64, error) {
	deleted, err := s.sales.DeleteByOwner(ctx, owner)
	if err != nil {
		return 0, err
	}
	s.cache.InvalidatePrefix(ctx, cache.OwnerPrefix(owner))
	return deleted, nil
}

func (s *SalesService) lines(ctx context.Context, owner string, dates DateRange) ([]model.SaleLine, error) {
	query := repository.NewQuery().With(repository.OwnerField, owner).Between(dates.From, dates.To)
	return s.reports.SaleLines(ctx, *query)
}
