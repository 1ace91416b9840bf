package model

import "github.com/shopspring/decimal"

// USDPrice converts a BRL price to USD with the given BRL-per-USD rate, rounded to cents.
func USDPrice(priceBRL, rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	v, _ := decimal.NewFromFloat(priceBRL).Div(decimal.NewFromFloat(rate)).Round(2).Float64()
	return v
}

// LineTotal returns unit price times quantity, rounded to cents.
func LineTotal(unitPrice float64, quantity int) float64 {
	v, _ := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()
	return v
}
