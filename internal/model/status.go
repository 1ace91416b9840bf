package model

// Status is the stock-health classification of a product.
type Status string

const (
	StatusRed    Status = "red"
	StatusYellow Status = "yellow"
	StatusGreen  Status = "green"
)

// yellowMargin is the widest gap above the suggested quantity that is still reported as yellow.
const yellowMargin = 5

// ComputeStatus derives the status from the current and suggested quantity.
// Negative quantities are valid input and always red.
func ComputeStatus(quantity, suggestedQuantity int) Status {
	diff := quantity - suggestedQuantity
	switch {
	case diff < 0:
		return StatusRed
	case diff <= yellowMargin:
		return StatusYellow
	default:
		return StatusGreen
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusRed, StatusYellow, StatusGreen:
		return true
	}
	return false
}
