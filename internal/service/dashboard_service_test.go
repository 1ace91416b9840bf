package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
	"github.com/iyhunko/inventory-dashboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncDashboard(t *testing.T) {
	// given
	db := newMemDB()
	ctx := context.Background()
	repo := db.Store().Dashboard()
	product := &model.Product{ID: uuid.New(), Owner: owner, Description: "Caneca", Quantity: 8, SuggestedQuantity: 2, PriceBRL: 30}
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	// when
	created, err := service.SyncDashboard(ctx, repo, product, t0)
	require.NoError(t, err)

	product.Quantity = 100
	product.Description = "Caneca azul"
	synced, err := service.SyncDashboard(ctx, repo, product, t0.Add(time.Hour))
	require.NoError(t, err)

	// then
	assert.Equal(t, created.ID, synced.ID)
	assert.Equal(t, 8, synced.InitialQuantity)
	assert.Equal(t, 8, synced.CurrentQuantity)
	assert.Equal(t, "Caneca azul", synced.Description)
	assert.Equal(t, t0.Add(time.Hour), synced.LastUpdate)
}

func TestApplySale_RequiresSnapshot(t *testing.T) {
	// given
	db := newMemDB()
	sale := &model.Sale{ProductID: uuid.New(), Owner: owner, Quantity: 1}

	// when
	_, err := service.ApplySale(context.Background(), db.Store().Dashboard(), sale, time.Now())

	// then
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDashboardService_List(t *testing.T) {
	// given
	db := newMemDB()
	ctx := context.Background()
	repo := db.Store().Dashboard()
	active := &model.Product{ID: uuid.New(), Owner: owner, Description: "active", Quantity: 3}
	soldOut := &model.Product{ID: uuid.New(), Owner: owner, Description: "sold out", Quantity: 1}
	other := &model.Product{ID: uuid.New(), Owner: "bob", Description: "bob's", Quantity: 1}
	t0 := time.Now().UTC()
	for i, p := range []*model.Product{active, soldOut, other} {
		_, err := service.SyncDashboard(ctx, repo, p, t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}
	_, err := service.ApplySale(ctx, repo, &model.Sale{ProductID: soldOut.ID, Owner: owner, Quantity: 1}, t0.Add(time.Minute))
	require.NoError(t, err)
	ds := service.NewDashboardService(repo, nil)

	// when
	visible, err := ds.List(ctx, owner, false)
	require.NoError(t, err)
	all, err := ds.List(ctx, owner, true)
	require.NoError(t, err)

	// then
	require.Len(t, visible, 1)
	assert.Equal(t, "active", visible[0].Description)
	require.Len(t, all, 2)
	assert.Equal(t, "sold out", all[0].Description)
	assert.False(t, all[0].IsActive)
}
