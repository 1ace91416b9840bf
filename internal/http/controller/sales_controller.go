package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-dashboard/internal/analytics"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
	"github.com/iyhunko/inventory-dashboard/internal/service"
)

// SalesService serves the sales ledger and its reports.
type SalesService interface {
	History(ctx context.Context, owner string, dates service.DateRange, limit int32, token string) (*service.SalesPage, error)
	TopProducts(ctx context.Context, owner string, dates service.DateRange, n int) ([]analytics.TopProduct, error)
	Trend(ctx context.Context, owner string, dates service.DateRange) ([]analytics.DailyRevenue, error)
	ByCategory(ctx context.Context, owner string, dates service.DateRange) ([]analytics.CategoryRevenue, error)
	Reset(ctx context.Context, owner string) (int64, error)
}

// SalesController handles HTTP requests for sales reports.
type SalesController struct {
	salesService SalesService
}

// NewSalesController creates a new SalesController.
func NewSalesController(salesService SalesService) *SalesController {
	return &SalesController{salesService: salesService}
}

// SalesHistoryRequest represents the query parameters of the sales history.
type SalesHistoryRequest struct {
	DateRangeRequest
	Limit int32  `form:"limit" binding:"gte=0"`
	Token string `form:"token"`
}

// SaleResponse represents one ledger entry.
type SaleResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	SaleDate  string  `json:"sale_date"`
	Value     float64 `json:"sale_value"`
	ValueUSD  float64 `json:"sale_value_usd"`
}

// SalesHistoryResponse is one page of the ledger.
type SalesHistoryResponse struct {
	Sales     []SaleResponse `json:"sales"`
	NextToken string         `json:"next_token,omitempty"`
}

// History handles GET /sales/history.
func (sc *SalesController) History(c *gin.Context) {
	var req SalesHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	dates, err := req.toRange()
	if err != nil {
		badRequest(c, err)
		return
	}

	page, err := sc.salesService.History(c.Request.Context(), middleware.Owner(c), dates, req.Limit, req.Token)
	if err != nil {
		respondError(c, err, "list sales")
		return
	}

	resp := SalesHistoryResponse{Sales: make([]SaleResponse, 0, len(page.Sales)), NextToken: page.NextToken}
	for _, sale := range page.Sales {
		resp.Sales = append(resp.Sales, SaleResponse{
			ID:        sale.ID.String(),
			ProductID: sale.ProductID.String(),
			Quantity:  sale.Quantity,
			SaleDate:  sale.SaleDate.Format(time.RFC3339),
			Value:     sale.SaleValueBRL,
			ValueUSD:  sale.SaleValueUSD,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// TopProductsRequest represents the query parameters of the top products report.
type TopProductsRequest struct {
	DateRangeRequest
	Limit int `form:"limit" binding:"gte=0"`
}

// TopProducts handles GET /sales/top-products.
func (sc *SalesController) TopProducts(c *gin.Context) {
	var req TopProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	dates, err := req.toRange()
	if err != nil {
		badRequest(c, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = analytics.DefaultTopN
	}

	top, err := sc.salesService.TopProducts(c.Request.Context(), middleware.Owner(c), dates, req.Limit)
	if err != nil {
		respondError(c, err, "build top products")
		return
	}
	if top == nil {
		top = []analytics.TopProduct{}
	}
	c.JSON(http.StatusOK, top)
}

// Trend handles GET /sales/trend.
func (sc *SalesController) Trend(c *gin.Context) {
	dates, ok := bindDateRange(c)
	if !ok {
		return
	}

	trend, err := sc.salesService.Trend(c.Request.Context(), middleware.Owner(c), dates)
	if err != nil {
		respondError(c, err, "build sales trend")
		return
	}
	if trend == nil {
		trend = []analytics.DailyRevenue{}
	}
	c.JSON(http.StatusOK, trend)
}

// ByCategory handles GET /sales/by-category.
func (sc *SalesController) ByCategory(c *gin.Context) {
	dates, ok := bindDateRange(c)
	if !ok {
		return
	}

	categories, err := sc.salesService.ByCategory(c.Request.Context(), middleware.Owner(c), dates)
	if err != nil {
		respondError(c, err, "build category report")
		return
	}
	if categories == nil {
		categories = []analytics.CategoryRevenue{}
	}
	c.JSON(http.StatusOK, categories)
}

// Reset handles POST /sales/reset, removing every sale of the caller.
func (sc *SalesController) Reset(c *gin.Context) {
	deleted, err := sc.salesService.Reset(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, err, "reset sales")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sales history cleared", "deleted": deleted})
}

func bindDateRange(c *gin.Context) (service.DateRange, bool) {
	var req DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return service.DateRange{}, false
	}
	dates, err := req.toRange()
	if err != nil {
		badRequest(c, err)
		return service.DateRange{}, false
	}
	return dates, true
}
