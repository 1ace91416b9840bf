package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

// DefaultHistoryLimit is the number of entries returned when no limit is given.
const DefaultHistoryLimit = 100

const maxHistoryLimit = 1000

// HistoryFilter narrows a history query. Zero values do not filter.
type HistoryFilter struct {
	ProductID uuid.UUID
	Action    model.HistoryAction
	Limit     int
}

// HistoryService reads the product audit log.
type HistoryService struct {
	history repository.HistoryRepository
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(history repository.HistoryRepository) *HistoryService {
	return &HistoryService{history: history}
}

// List returns the owner's history entries newest first.
func (s *HistoryService) List(ctx context.Context, owner string, filter HistoryFilter) ([]*model.ProductHistory, error) {
	query := repository.NewQuery().With(repository.OwnerField, owner)

	if filter.ProductID != uuid.Nil {
		query.With(repository.ProductIDField, filter.ProductID.String())
	}
	if filter.Action != "" {
		switch filter.Action {
		case model.HistoryActionCreated, model.HistoryActionUpdated, model.HistoryActionRemoved:
			query.With(repository.ActionField, string(filter.Action))
		default:
			return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidFilter, filter.Action)
		}
	}

	switch {
	case filter.Limit <= 0:
		query.Limit = DefaultHistoryLimit
	case filter.Limit > maxHistoryLimit:
		query.Limit = maxHistoryLimit
	default:
		query.Limit = filter.Limit
	}

	entries, err := s.history.List(ctx, *query)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*model.ProductHistory{}
	}
	return entries, nil
}
