package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
	"github.com/iyhunko/inventory-dashboard/internal/service"
)

// PurchaseService records sales.
type PurchaseService interface {
	Purchase(ctx context.Context, owner string, productID uuid.UUID, quantity int) (*service.PurchaseResult, error)
}

// PurchaseController handles HTTP requests for buying products.
type PurchaseController struct {
	purchaseService PurchaseService
}

// NewPurchaseController creates a new PurchaseController.
func NewPurchaseController(purchaseService PurchaseService) *PurchaseController {
	return &PurchaseController{purchaseService: purchaseService}
}

// PurchaseRequest represents the request body of a purchase. Quantity is checked by the service.
type PurchaseRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// PurchaseResponse describes the committed sale and the resulting stock.
type PurchaseResponse struct {
	Message          string  `json:"message"`
	SaleID           string  `json:"sale_id"`
	ProductID        string  `json:"product_id"`
	Quantity         int     `json:"quantity"`
	TotalValue       float64 `json:"total_value"`
	TotalValueUSD    float64 `json:"total_value_usd"`
	RemainingStock   int     `json:"remaining_stock"`
	Status           string  `json:"status"`
	Action           string  `json:"action"`
	DashboardActive  bool    `json:"dashboard_active"`
	DashboardSoldQty int     `json:"dashboard_sold_quantity"`
}

// Purchase handles the HTTP POST request buying a quantity of a product.
func (pc *PurchaseController) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	result, err := pc.purchaseService.Purchase(c.Request.Context(), middleware.Owner(c), productID, req.Quantity)
	if err != nil {
		respondError(c, err, "complete purchase")
		return
	}

	c.JSON(http.StatusOK, PurchaseResponse{
		Message:          "Purchase completed",
		SaleID:           result.Sale.ID.String(),
		ProductID:        result.Sale.ProductID.String(),
		Quantity:         result.Sale.Quantity,
		TotalValue:       result.Sale.SaleValueBRL,
		TotalValueUSD:    result.Sale.SaleValueUSD,
		RemainingStock:   result.Dashboard.CurrentQuantity,
		Status:           string(result.Dashboard.Status),
		Action:           string(result.Action),
		DashboardActive:  result.Dashboard.IsActive,
		DashboardSoldQty: result.Dashboard.SoldQuantity,
	})
}
