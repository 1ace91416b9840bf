package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/cache"
	"github.com/iyhunko/inventory-dashboard/internal/live"
	"github.com/iyhunko/inventory-dashboard/internal/metrics"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

// PurchaseResult describes a committed purchase.
type PurchaseResult struct {
	Sale *model.Sale
	// Product is the product after the stock decrement. It no longer exists when Action is removed.
	Product   *model.Product
	Dashboard *model.DashboardProduct
	Action    model.PurchaseAction
}

// Notification is the payload pushed to live channels and queued for the event broker.
func (r *PurchaseResult) Notification() model.SaleNotification {
	return model.SaleNotification{
		Owner:       r.Sale.Owner,
		SaleID:      r.Sale.ID.String(),
		ProductID:   r.Product.ID.String(),
		Description: r.Product.Description,
		Quantity:    r.Sale.Quantity,
		TotalValue:  r.Sale.SaleValueBRL,
		Action:      r.Action,
	}
}

// PurchaseService records sales and keeps products, dashboard and ledger consistent.
type PurchaseService struct {
	tx          repository.Transactor
	history     repository.HistoryRepository
	broadcaster Broadcaster
	cache       cache.Cache
	now         func() time.Time
}

// NewPurchaseService wires the purchase use case. A nil cache disables caching.
func NewPurchaseService(tx repository.Transactor, history repository.HistoryRepository, broadcaster Broadcaster, c cache.Cache) *PurchaseService {
	if c == nil {
		c = cache.Noop{}
	}
	return &PurchaseService{
		tx:          tx,
		history:     history,
		broadcaster: broadcaster,
		cache:       c,
		now:         nowUTC,
	}
}

// Purchase sells quantity units of the owner's product.
//
// The product row is locked, the sale appended, the dashboard synced with the pre-sale product,
// the stock decremented (the product is deleted when it reaches zero), the sale applied to the
// dashboard and a sale.completed event queued, all in one transaction. Only after commit is the
// sale broadcast to the owner's live channels and written to the history.
func (s *PurchaseService) Purchase(ctx context.Context, owner string, productID uuid.UUID, quantity int) (*PurchaseResult, error) {
	if quantity <= 0 {
		metrics.PurchasesRejected.WithLabelValues("invalid_quantity").Inc()
		return nil, ErrInvalidQuantity
	}

	var result *PurchaseResult
	err := s.tx.WithinTransaction(ctx, func(store repository.Store) error {
		res, err := s.purchase(ctx, store, owner, productID, quantity)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		metrics.PurchasesRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	metrics.Purchases.WithLabelValues(string(result.Action)).Inc()

	notification := result.Notification()
	notification.Owner = ""
	notification.SaleID = ""
	delivered := s.broadcaster.Broadcast(ctx, owner, live.NewMessage(live.MessageTypeNewSale, notification))
	slog.Debug("Sale broadcast", slog.String("owner", owner), slog.Int("delivered", delivered))

	historyAction := model.HistoryActionUpdated
	if result.Action == model.PurchaseActionRemoved {
		historyAction = model.HistoryActionRemoved
	}
	recordHistory(ctx, s.history, model.NewProductHistory(result.Product, historyAction, fmt.Sprintf("sale of %d units", quantity)))
	s.cache.InvalidatePrefix(ctx, cache.OwnerPrefix(owner))

	return result, nil
}

func (s *PurchaseService) purchase(ctx context.Context, store repository.Store, owner string, productID uuid.UUID, quantity int) (*PurchaseResult, error) {
	product, err := store.Products().FindByIDForUpdate(ctx, owner, productID)
	if err != nil {
		return nil, err
	}
	if product.Quantity < quantity {
		return nil, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, quantity, product.Quantity)
	}

	sale := model.NewSale(product, quantity)
	if _, err := store.Sales().Create(ctx, sale); err != nil {
		return nil, err
	}

	now := s.now()
	if _, err := SyncDashboard(ctx, store.Dashboard(), product, now); err != nil {
		return nil, err
	}

	product.Quantity -= quantity
	product.Status = model.ComputeStatus(product.Quantity, product.SuggestedQuantity)

	var (
		action   model.PurchaseAction
		snapshot *model.DashboardProduct
	)
	if product.Quantity <= 0 {
		action = model.PurchaseActionRemoved
		if snapshot, err = ApplySale(ctx, store.Dashboard(), sale, now); err != nil {
			return nil, err
		}
		if err := store.Products().DeleteByID(ctx, owner, product.ID); err != nil {
			return nil, err
		}
	} else {
		action = model.PurchaseActionUpdated
		if err := store.Products().Update(ctx, product); err != nil {
			return nil, err
		}
		if snapshot, err = ApplySale(ctx, store.Dashboard(), sale, now); err != nil {
			return nil, err
		}
	}

	result := &PurchaseResult{Sale: sale, Product: product, Dashboard: snapshot, Action: action}

	event, err := model.NewEvent(model.EventTypeSaleCompleted, result.Notification())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	if _, err := store.Events().Create(ctx, event); err != nil {
		return nil, err
	}

	return result, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "error"
	}
}
