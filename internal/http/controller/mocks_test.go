package controller

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/analytics"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, owner string, in service.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, owner, in)
	product, _ := args.Get(0).(*model.Product)
	return product, args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, owner, description string, categories []string) ([]*model.Product, error) {
	args := m.Called(ctx, owner, description, categories)
	products, _ := args.Get(0).([]*model.Product)
	return products, args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, owner string, id uuid.UUID, in service.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, owner, id, in)
	product, _ := args.Get(0).(*model.Product)
	return product, args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, owner string, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, owner, id)
	product, _ := args.Get(0).(*model.Product)
	return product, args.Error(1)
}

func (m *MockProductService) Categories(ctx context.Context, owner string) ([]string, error) {
	args := m.Called(ctx, owner)
	categories, _ := args.Get(0).([]string)
	return categories, args.Error(1)
}

type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Purchase(ctx context.Context, owner string, productID uuid.UUID, quantity int) (*service.PurchaseResult, error) {
	args := m.Called(ctx, owner, productID, quantity)
	result, _ := args.Get(0).(*service.PurchaseResult)
	return result, args.Error(1)
}

type MockSalesService struct {
	mock.Mock
}

func (m *MockSalesService) History(ctx context.Context, owner string, dates service.DateRange, limit int32, token string) (*service.SalesPage, error) {
	args := m.Called(ctx, owner, dates, limit, token)
	page, _ := args.Get(0).(*service.SalesPage)
	return page, args.Error(1)
}

func (m *MockSalesService) TopProducts(ctx context.Context, owner string, dates service.DateRange, n int) ([]analytics.TopProduct, error) {
	args := m.Called(ctx, owner, dates, n)
	top, _ := args.Get(0).([]analytics.TopProduct)
	return top, args.Error(1)
}

func (m *MockSalesService) Trend(ctx context.Context, owner string, dates service.DateRange) ([]analytics.DailyRevenue, error) {
	args := m.Called(ctx, owner, dates)
	trend, _ := args.Get(0).([]analytics.DailyRevenue)
	return trend, args.Error(1)
}

func (m *MockSalesService) ByCategory(ctx context.Context, owner string, dates service.DateRange) ([]analytics.CategoryRevenue, error) {
	args := m.Called(ctx, owner, dates)
	categories, _ := args.Get(0).([]analytics.CategoryRevenue)
	return categories, args.Error(1)
}

func (m *MockSalesService) Reset(ctx context.Context, owner string) (int64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(int64), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) List(ctx context.Context, owner string, showInactive bool) ([]*model.DashboardProduct, error) {
	args := m.Called(ctx, owner, showInactive)
	snapshots, _ := args.Get(0).([]*model.DashboardProduct)
	return snapshots, args.Error(1)
}

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) List(ctx context.Context, owner string, filter service.HistoryFilter) ([]*model.ProductHistory, error) {
	args := m.Called(ctx, owner, filter)
	entries, _ := args.Get(0).([]*model.ProductHistory)
	return entries, args.Error(1)
}

type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Current(ctx context.Context) (float64, string) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.String(1)
}

func (m *MockRateService) SetRate(ctx context.Context, rate float64) (int64, error) {
	args := m.Called(ctx, rate)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
