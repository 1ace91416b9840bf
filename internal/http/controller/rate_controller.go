package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RateService reads and overrides the USD-BRL rate.
type RateService interface {
	Current(ctx context.Context) (float64, string)
	SetRate(ctx context.Context, rate float64) (int64, error)
}

// RateController handles HTTP requests for the exchange rate.
type RateController struct {
	rateService RateService
}

// NewRateController creates a new RateController.
func NewRateController(rateService RateService) *RateController {
	return &RateController{rateService: rateService}
}

// SetRateRequest represents the body of a manual rate override.
type SetRateRequest struct {
	Rate float64 `json:"rate" binding:"required"`
}

// GetRate handles GET /exchange-rate.
func (rc *RateController) GetRate(c *gin.Context) {
	rate, source := rc.rateService.Current(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"rate": rate, "source": source})
}

// SetRate handles PUT /exchange-rate.
func (rc *RateController) SetRate(c *gin.Context) {
	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	repriced, err := rc.rateService.SetRate(c.Request.Context(), req.Rate)
	if err != nil {
		respondError(c, err, "update exchange rate")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": req.Rate, "source": "manual", "repriced_products": repriced})
}
