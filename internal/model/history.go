package model

import (
	"time"

	"github.com/google/uuid"
)

// HistoryAction is the lifecycle event recorded in the product history.
type HistoryAction string

const (
	HistoryActionCreated HistoryAction = "created"
	HistoryActionUpdated HistoryAction = "updated"
	HistoryActionRemoved HistoryAction = "removed"
)

// ProductHistory is an append-only audit entry holding a snapshot of a product.
type ProductHistory struct {
	ID                uuid.UUID
	OriginalID        uuid.UUID
	Owner             string
	Description       string
	ImageURL          string
	Quantity          int
	SuggestedQuantity int
	PriceBRL          float64
	PriceUSD          float64
	Status            Status
	Categories        []string
	Action            HistoryAction
	ActionDate        time.Time
	ActionReason      string
}

// InitMeta initializes the entry ID and action date.
func (h *ProductHistory) InitMeta() {
	h.ID = uuid.New()
	h.ActionDate = time.Now().UTC()
}

// NewProductHistory snapshots p for the given action.
func NewProductHistory(p *Product, action HistoryAction, reason string) *ProductHistory {
	return &ProductHistory{
		OriginalID:        p.ID,
		Owner:             p.Owner,
		Description:       p.Description,
		ImageURL:          p.ImageURL,
		Quantity:          p.Quantity,
		SuggestedQuantity: p.SuggestedQuantity,
		PriceBRL:          p.PriceBRL,
		PriceUSD:          p.PriceUSD,
		Status:            p.Status,
		Categories:        append([]string(nil), p.Categories...),
		Action:            action,
		ActionReason:      reason,
	}
}
