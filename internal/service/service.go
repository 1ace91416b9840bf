// Package service holds the inventory use cases. Services depend on repository interfaces and
// run multi-row writes through a repository.Transactor.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iyhunko/inventory-dashboard/internal/live"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

var (
	// ErrInsufficientStock is returned when a purchase asks for more units than are in stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned when a purchase quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidProduct is returned when product fields fail validation.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInvalidFilter is returned for an unknown list filter value.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidCredentials is returned when a login does not match an enabled account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidUser is returned when registration fields fail validation.
	ErrInvalidUser = errors.New("invalid user")
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")
)

// RateSource supplies the current BRL-per-USD exchange rate.
type RateSource interface {
	Rate(ctx context.Context) float64
}

// Broadcaster pushes messages to live dashboard channels.
type Broadcaster interface {
	Broadcast(ctx context.Context, owner string, msg live.Message) int
	BroadcastAll(ctx context.Context, msg live.Message) int
}

// recordHistory appends entry and only logs on failure: history never fails the caller.
func recordHistory(ctx context.Context, history repository.HistoryRepository, entry *model.ProductHistory) {
	if history == nil {
		return
	}
	if _, err := history.Create(ctx, entry); err != nil {
		slog.Error("Failed to record product history",
			slog.String("product_id", entry.OriginalID.String()),
			slog.String("action", string(entry.Action)),
			slog.Any("err", err))
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
