package model

import (
	"time"

	"github.com/google/uuid"
)

// Sale is an immutable ledger entry for one purchase.
type Sale struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	Owner        string
	Quantity     int
	SaleDate     time.Time
	SaleValueBRL float64
	SaleValueUSD float64
}

// InitMeta initializes the sale ID and stamps the sale date.
func (s *Sale) InitMeta() {
	s.ID = uuid.New()
	s.SaleDate = time.Now().UTC()
}

// NewSale builds the ledger entry for qty units of p at its current prices.
func NewSale(p *Product, qty int) *Sale {
	return &Sale{
		ProductID:    p.ID,
		Owner:        p.Owner,
		Quantity:     qty,
		SaleValueBRL: LineTotal(p.PriceBRL, qty),
		SaleValueUSD: LineTotal(p.PriceUSD, qty),
	}
}

// SaleLine is a sale joined with the descriptive data of its product, used by reports.
type SaleLine struct {
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	Description string
	Categories  []string
	Quantity    int
	ValueBRL    float64
	SaleDate    time.Time
}
