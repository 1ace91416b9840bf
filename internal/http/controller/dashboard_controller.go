package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
	"github.com/iyhunko/inventory-dashboard/internal/model"
)

// DashboardService lists the dashboard projection.
type DashboardService interface {
	List(ctx context.Context, owner string, showInactive bool) ([]*model.DashboardProduct, error)
}

// DashboardController handles HTTP requests for the dashboard.
type DashboardController struct {
	dashboardService DashboardService
}

// NewDashboardController creates a new DashboardController.
func NewDashboardController(dashboardService DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// DashboardProductResponse represents one dashboard snapshot.
type DashboardProductResponse struct {
	ID                string   `json:"id"`
	OriginalID        string   `json:"original_id"`
	Description       string   `json:"description"`
	ImageURL          string   `json:"image_url"`
	InitialQuantity   int      `json:"initial_quantity"`
	SoldQuantity      int      `json:"sold_quantity"`
	CurrentQuantity   int      `json:"current_quantity"`
	SuggestedQuantity int      `json:"suggested_quantity"`
	Price             float64  `json:"price"`
	PriceUSD          float64  `json:"price_usd"`
	Status            string   `json:"status"`
	Categories        []string `json:"categories"`
	LastUpdate        string   `json:"last_update"`
	IsActive          bool     `json:"is_active"`
}

type listDashboardRequest struct {
	ShowInactive bool `form:"show_inactive"`
}

// ListProducts handles GET /dashboard/products.
func (dc *DashboardController) ListProducts(c *gin.Context) {
	var req listDashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	snapshots, err := dc.dashboardService.List(c.Request.Context(), middleware.Owner(c), req.ShowInactive)
	if err != nil {
		respondError(c, err, "list dashboard products")
		return
	}

	resp := make([]DashboardProductResponse, 0, len(snapshots))
	for _, d := range snapshots {
		categories := d.Categories
		if categories == nil {
			categories = []string{}
		}
		resp = append(resp, DashboardProductResponse{
			ID:                d.ID.String(),
			OriginalID:        d.OriginalID.String(),
			Description:       d.Description,
			ImageURL:          d.ImageURL,
			InitialQuantity:   d.InitialQuantity,
			SoldQuantity:      d.SoldQuantity,
			CurrentQuantity:   d.CurrentQuantity,
			SuggestedQuantity: d.SuggestedQuantity,
			Price:             d.PriceBRL,
			PriceUSD:          d.PriceUSD,
			Status:            string(d.Status),
			Categories:        categories,
			LastUpdate:        d.LastUpdate.Format(time.RFC3339),
			IsActive:          d.IsActive,
		})
	}
	c.JSON(http.StatusOK, resp)
}
