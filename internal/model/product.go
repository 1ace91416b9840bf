package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a row of the live inventory owned by a single user.
type Product struct {
	ID                uuid.UUID
	Owner             string
	Description       string
	ImageURL          string
	Quantity          int
	SuggestedQuantity int
	PriceBRL          float64
	PriceUSD          float64
	Status            Status
	Categories        []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// InitMeta initializes the product metadata including ID and timestamps.
func (p *Product) InitMeta() {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
}

// Reprice recomputes the derived fields: status from the quantities and the USD price from rate.
func (p *Product) Reprice(rate float64) {
	p.Status = ComputeStatus(p.Quantity, p.SuggestedQuantity)
	p.PriceUSD = USDPrice(p.PriceBRL, rate)
}
