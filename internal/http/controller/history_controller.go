package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/service"
)

// HistoryService lists the product audit log.
type HistoryService interface {
	List(ctx context.Context, owner string, filter service.HistoryFilter) ([]*model.ProductHistory, error)
}

// HistoryController handles HTTP requests for the product history.
type HistoryController struct {
	historyService HistoryService
}

// NewHistoryController creates a new HistoryController.
func NewHistoryController(historyService HistoryService) *HistoryController {
	return &HistoryController{historyService: historyService}
}

type listHistoryRequest struct {
	ProductID string `form:"product_id"`
	Action    string `form:"action"`
	Limit     int    `form:"limit" binding:"gte=0"`
}

// HistoryEntryResponse represents one audit entry.
type HistoryEntryResponse struct {
	ID                string   `json:"id"`
	OriginalID        string   `json:"original_id"`
	Description       string   `json:"description"`
	ImageURL          string   `json:"image_url"`
	Quantity          int      `json:"quantity"`
	SuggestedQuantity int      `json:"suggested_quantity"`
	Price             float64  `json:"price"`
	PriceUSD          float64  `json:"price_usd"`
	Status            string   `json:"status"`
	Categories        []string `json:"categories"`
	Action            string   `json:"action"`
	ActionDate        string   `json:"action_date"`
	ActionReason      string   `json:"action_reason"`
}

// List handles GET /products/history.
func (hc *HistoryController) List(c *gin.Context) {
	var req listHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	filter := service.HistoryFilter{Action: model.HistoryAction(req.Action), Limit: req.Limit}
	if req.ProductID != "" {
		id, err := uuid.Parse(req.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}
		filter.ProductID = id
	}

	entries, err := hc.historyService.List(c.Request.Context(), middleware.Owner(c), filter)
	if err != nil {
		respondError(c, err, "list history")
		return
	}

	resp := make([]HistoryEntryResponse, 0, len(entries))
	for _, h := range entries {
		categories := h.Categories
		if categories == nil {
			categories = []string{}
		}
		resp = append(resp, HistoryEntryResponse{
			ID:                h.ID.String(),
			OriginalID:        h.OriginalID.String(),
			Description:       h.Description,
			ImageURL:          h.ImageURL,
			Quantity:          h.Quantity,
			SuggestedQuantity: h.SuggestedQuantity,
			Price:             h.PriceBRL,
			PriceUSD:          h.PriceUSD,
			Status:            string(h.Status),
			Categories:        categories,
			Action:            string(h.Action),
			ActionDate:        h.ActionDate.Format(time.RFC3339),
			ActionReason:      h.ActionReason,
		})
	}
	c.JSON(http.StatusOK, resp)
}
