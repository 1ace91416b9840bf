package model

// PurchaseAction tells subscribers what happened to the product row after a sale.
type PurchaseAction string

const (
	PurchaseActionUpdated PurchaseAction = "updated"
	PurchaseActionRemoved PurchaseAction = "removed"
)

// SaleNotification is the payload pushed to live subscribers and to the event broker after a purchase.
type SaleNotification struct {
	Owner       string         `json:"owner,omitempty"`
	SaleID      string         `json:"sale_id,omitempty"`
	ProductID   string         `json:"product_id"`
	Description string         `json:"description"`
	Quantity    int            `json:"quantity"`
	TotalValue  float64        `json:"total_value"`
	Action      PurchaseAction `json:"action"`
}

// ProductNotification is the broker payload for product lifecycle events.
type ProductNotification struct {
	Action      string  `json:"action"`
	Owner       string  `json:"owner"`
	ProductID   string  `json:"product_id"`
	Description string  `json:"description"`
	PriceBRL    float64 `json:"price_brl"`
}
