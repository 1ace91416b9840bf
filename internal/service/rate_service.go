package service

import (
	"context"
	"log/slog"

	"github.com/iyhunko/inventory-dashboard/internal/cache"
	"github.com/iyhunko/inventory-dashboard/internal/exchange"
	"github.com/iyhunko/inventory-dashboard/internal/live"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

// RateProvider is the exchange rate source that can be overridden manually.
type RateProvider interface {
	Current(ctx context.Context) (float64, string)
	SetRate(rate float64) error
}

// RateUpdate is the payload pushed to every live channel after a manual rate change.
type RateUpdate struct {
	Rate float64 `json:"rate"`
}

// RateService exposes the exchange rate and reprices stored USD prices when it is overridden.
type RateService struct {
	tx          repository.Transactor
	provider    RateProvider
	broadcaster Broadcaster
	cache       cache.Cache
}

// NewRateService creates a RateService. A nil cache disables caching.
func NewRateService(tx repository.Transactor, provider RateProvider, broadcaster Broadcaster, c cache.Cache) *RateService {
	if c == nil {
		c = cache.Noop{}
	}
	return &RateService{tx: tx, provider: provider, broadcaster: broadcaster, cache: c}
}

// Current returns the rate in use and its source.
func (s *RateService) Current(ctx context.Context) (float64, string) {
	return s.provider.Current(ctx)
}

// SetRate recomputes price_usd of every product and dashboard snapshot, pins rate once the
// new prices are committed, drops every cached response and notifies all live channels. It
// returns the number of repriced products. A failed update leaves the rate in use unchanged.
func (s *RateService) SetRate(ctx context.Context, rate float64) (int64, error) {
	if rate <= 0 {
		return 0, exchange.ErrInvalidRate
	}

	var repriced int64
	err := s.tx.WithinTransaction(ctx, func(store repository.Store) error {
		n, err := store.Products().RepriceUSD(ctx, rate)
		if err != nil {
			return err
		}
		if _, err := store.Dashboard().RepriceUSD(ctx, rate); err != nil {
			return err
		}
		repriced = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := s.provider.SetRate(rate); err != nil {
		return 0, err
	}

	s.cache.InvalidatePrefix(ctx, cache.Prefix)
	delivered := s.broadcaster.BroadcastAll(ctx, live.NewMessage(live.MessageTypeRateUpdated, RateUpdate{Rate: rate}))
	slog.Info("Exchange rate updated",
		slog.Float64("rate", rate),
		slog.Int64("repriced", repriced),
		slog.Int("notified", delivered))

	return repriced, nil
}
