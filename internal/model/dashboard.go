package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardProduct is the projection of a product shown on the dashboard. It outlives the
// product row: when stock reaches zero the product is deleted but its snapshot is only
// deactivated.
//
// InitialQuantity and SoldQuantity belong to the projection and are never copied from the
// product after the snapshot is created. CurrentQuantity is always InitialQuantity minus
// SoldQuantity and IsActive is true exactly when CurrentQuantity is positive.
type DashboardProduct struct {
	ID                uuid.UUID
	OriginalID        uuid.UUID
	Owner             string
	Description       string
	ImageURL          string
	InitialQuantity   int
	SoldQuantity      int
	CurrentQuantity   int
	SuggestedQuantity int
	PriceBRL          float64
	PriceUSD          float64
	Status            Status
	Categories        []string
	LastUpdate        time.Time
	IsActive          bool
}

// InitMeta initializes the snapshot ID.
func (d *DashboardProduct) InitMeta() {
	d.ID = uuid.New()
	if d.LastUpdate.IsZero() {
		d.LastUpdate = time.Now().UTC()
	}
}

// NewDashboardProduct seeds a snapshot from the product's current state.
func NewDashboardProduct(p *Product, now time.Time) *DashboardProduct {
	d := &DashboardProduct{
		OriginalID:      p.ID,
		Owner:           p.Owner,
		InitialQuantity: p.Quantity,
	}
	d.copyDescriptive(p)
	d.recompute(now)
	return d
}

// SyncFrom overwrites the descriptive fields from the live product and leaves the counters alone.
func (d *DashboardProduct) SyncFrom(p *Product, now time.Time) {
	d.copyDescriptive(p)
	d.recompute(now)
}

// ApplySale records qty more units sold.
func (d *DashboardProduct) ApplySale(qty int, now time.Time) {
	d.SoldQuantity += qty
	d.recompute(now)
}

func (d *DashboardProduct) copyDescriptive(p *Product) {
	d.Description = p.Description
	d.ImageURL = p.ImageURL
	d.SuggestedQuantity = p.SuggestedQuantity
	d.PriceBRL = p.PriceBRL
	d.PriceUSD = p.PriceUSD
	d.Categories = append([]string(nil), p.Categories...)
}

func (d *DashboardProduct) recompute(now time.Time) {
	d.CurrentQuantity = d.InitialQuantity - d.SoldQuantity
	d.Status = ComputeStatus(d.CurrentQuantity, d.SuggestedQuantity)
	d.IsActive = d.CurrentQuantity > 0
	d.LastUpdate = now
}
