package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_List(t *testing.T) {
	// given
	db := newMemDB()
	first, second := uuid.New(), uuid.New()
	for _, h := range []model.ProductHistory{
		{OriginalID: first, Owner: owner, Action: model.HistoryActionCreated},
		{OriginalID: second, Owner: owner, Action: model.HistoryActionCreated},
		{OriginalID: first, Owner: owner, Action: model.HistoryActionUpdated},
		{OriginalID: first, Owner: owner, Action: model.HistoryActionRemoved},
		{OriginalID: first, Owner: "bob", Action: model.HistoryActionCreated},
	} {
		h := h
		_, err := db.Store().History().Create(context.Background(), &h)
		require.NoError(t, err)
	}
	hs := service.NewHistoryService(db.Store().History())

	tests := []struct {
		name     string
		filter   service.HistoryFilter
		expected []model.HistoryAction
	}{
		{name: "all entries newest first", expected: []model.HistoryAction{"removed", "updated", "created", "created"}},
		{name: "by product", filter: service.HistoryFilter{ProductID: first}, expected: []model.HistoryAction{"removed", "updated", "created"}},
		{name: "by action", filter: service.HistoryFilter{Action: model.HistoryActionCreated}, expected: []model.HistoryAction{"created", "created"}},
		{name: "limited", filter: service.HistoryFilter{Limit: 1}, expected: []model.HistoryAction{"removed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// when
			entries, err := hs.List(context.Background(), owner, tt.filter)

			// then
			require.NoError(t, err)
			actions := []model.HistoryAction{}
			for _, e := range entries {
				assert.Equal(t, owner, e.Owner)
				actions = append(actions, e.Action)
			}
			assert.Equal(t, tt.expected, actions)
		})
	}
}

func TestHistoryService_List_UnknownAction(t *testing.T) {
	_, err := service.NewHistoryService(newMemDB().Store().History()).
		List(context.Background(), owner, service.HistoryFilter{Action: "exploded"})

	require.ErrorIs(t, err, service.ErrInvalidFilter)
}
