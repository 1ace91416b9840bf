package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/cache"
	"github.com/iyhunko/inventory-dashboard/internal/metrics"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

const (
	historyReasonCreated = "Product created"
	historyReasonUpdated = "Product updated"
	historyReasonDeleted = "Product deleted"
	historyReasonSeeded  = "Initial setup"
)

// ProductInput holds the client-editable fields of a product.
type ProductInput struct {
	Description       string
	ImageURL          string
	Quantity          int
	SuggestedQuantity int
	PriceBRL          float64
	Categories        []string
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidProduct)
	case in.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidProduct)
	case in.SuggestedQuantity < 0:
		return fmt.Errorf("%w: suggested quantity must not be negative", ErrInvalidProduct)
	case in.PriceBRL < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}

func (in ProductInput) applyTo(p *model.Product) {
	p.Description = strings.TrimSpace(in.Description)
	p.ImageURL = in.ImageURL
	p.Quantity = in.Quantity
	p.SuggestedQuantity = in.SuggestedQuantity
	p.PriceBRL = in.PriceBRL
	p.Categories = CleanCategories(in.Categories)
}

// CleanCategories trims every category and drops blanks, keeping the order.
func CleanCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ProductService manages the owner's live products.
type ProductService struct {
	tx       repository.Transactor
	products repository.ProductRepository
	history  repository.HistoryRepository
	rates    RateSource
	cache    cache.Cache
}

// NewProductService wires the product use cases. A nil cache disables caching.
func NewProductService(tx repository.Transactor, products repository.ProductRepository, history repository.HistoryRepository, rates RateSource, c cache.Cache) *ProductService {
	if c == nil {
		c = cache.Noop{}
	}
	return &ProductService{
		tx:       tx,
		products: products,
		history:  history,
		rates:    rates,
		cache:    c,
	}
}

// CreateProduct stores a new product with derived status and USD price and queues a product.created event.
func (ps *ProductService) CreateProduct(ctx context.Context, owner string, in ProductInput) (*model.Product, error) {
	return ps.createProduct(ctx, owner, in, historyReasonCreated)
}

func (ps *ProductService) createProduct(ctx context.Context, owner string, in ProductInput, reason string) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &model.Product{Owner: owner}
	in.applyTo(product)
	product.Reprice(ps.rates.Rate(ctx))
	product.InitMeta()

	err := ps.tx.WithinTransaction(ctx, func(store repository.Store) error {
		if _, err := store.Products().Create(ctx, product); err != nil {
			return err
		}
		return queueProductEvent(ctx, store, model.EventTypeProductCreated, "created", product)
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	recordHistory(ctx, ps.history, model.NewProductHistory(product, model.HistoryActionCreated, reason))
	ps.cache.InvalidatePrefix(ctx, cache.OwnerPrefix(owner))

	return product, nil
}

// ListProducts returns the owner's products newest first. An empty description or category list
// does not filter.
func (ps *ProductService) ListProducts(ctx context.Context, owner, description string, categories []string) ([]*model.Product, error) {
	categories = CleanCategories(categories)
	description = strings.TrimSpace(description)

	key := cache.Key(owner, "products", description, strings.Join(categories, ","))
	return cache.Fetch(ctx, ps.cache, key, func() ([]*model.Product, error) {
		query := repository.NewQuery().
			With(repository.OwnerField, owner).
			With(repository.DescriptionField, description).
			With(repository.CategoriesField, strings.Join(categories, ","))
		products, err := ps.products.List(ctx, *query)
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []*model.Product{}
		}
		return products, nil
	})
}

// UpdateProduct overwrites the editable fields and recomputes status and USD price.
func (ps *ProductService) UpdateProduct(ctx context.Context, owner string, id uuid.UUID, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := ps.products.FindByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	in.applyTo(product)
	product.Reprice(ps.rates.Rate(ctx))

	if err := ps.products.Update(ctx, product); err != nil {
		return nil, err
	}

	recordHistory(ctx, ps.history, model.NewProductHistory(product, model.HistoryActionUpdated, historyReasonUpdated))
	ps.cache.InvalidatePrefix(ctx, cache.OwnerPrefix(owner))

	return product, nil
}

// DeleteProduct removes the product and queues a product.deleted event. It returns the deleted row.
func (ps *ProductService) DeleteProduct(ctx context.Context, owner string, id uuid.UUID) (*model.Product, error) {
	var deleted *model.Product
	err := ps.tx.WithinTransaction(ctx, func(store repository.Store) error {
		product, err := store.Products().FindByID(ctx, owner, id)
		if err != nil {
			return err
		}
		if err := store.Products().DeleteByID(ctx, owner, id); err != nil {
			return err
		}
		deleted = product
		return queueProductEvent(ctx, store, model.EventTypeProductDeleted, "deleted", product)
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductsDeleted.Inc()
	recordHistory(ctx, ps.history, model.NewProductHistory(deleted, model.HistoryActionRemoved, historyReasonDeleted))
	ps.cache.InvalidatePrefix(ctx, cache.OwnerPrefix(owner))

	return deleted, nil
}

// Categories returns the sorted distinct categories of the owner's products.
func (ps *ProductService) Categories(ctx context.Context, owner string) ([]string, error) {
	return cache.Fetch(ctx, ps.cache, cache.Key(owner, "categories"), func() ([]string, error) {
		return ps.products.ListCategories(ctx, owner)
	})
}

func queueProductEvent(ctx context.Context, store repository.Store, eventType, action string, p *model.Product) error {
	event, err := model.NewEvent(eventType, model.ProductNotification{
		Action:      action,
		Owner:       p.Owner,
		ProductID:   p.ID.String(),
		Description: p.Description,
		PriceBRL:    p.PriceBRL,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if _, err := store.Events().Create(ctx, event); err != nil {
		slog.Error("Failed to queue product event", slog.String("event_type", eventType), slog.Any("err", err))
		return err
	}
	return nil
}
