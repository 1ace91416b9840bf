// Package analytics aggregates sale lines into the dashboard charts.
package analytics

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultTopN is the number of products returned by TopProducts when n is not positive.
const DefaultTopN = 10

const dayLayout = "2006-01-02"

var categoryPalette = map[string]string{
	"Eletrônicos": "#f87171",
	"Roupas":      "#60a5fa",
	"Alimentos":   "#34d399",
	"Livros":      "#facc15",
	"Casa":        "#a78bfa",
	"Brinquedos":  "#fb923c",
}

// TopProduct is the sold quantity and revenue of one product.
type TopProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Sales     int       `json:"sales"`
	Revenue   float64   `json:"revenue"`
}

// DailyRevenue is the revenue of one UTC day.
type DailyRevenue struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// CategoryRevenue is the sold quantity and revenue attributed to one category.
type CategoryRevenue struct {
	Name    string  `json:"name"`
	Sales   int     `json:"sales"`
	Revenue float64 `json:"revenue"`
	Color   string  `json:"color"`
}

type bucket struct {
	key     string
	name    string
	id      uuid.UUID
	sales   int
	revenue decimal.Decimal
}

// group folds lines into buckets keyed by keyOf, preserving order of first appearance.
func group(lines []model.SaleLine, keyOf func(model.SaleLine) (string, bool)) []*bucket {
	index := make(map[string]*bucket)
	var ordered []*bucket
	for _, line := range lines {
		key, ok := keyOf(line)
		if !ok {
			continue
		}
		b, seen := index[key]
		if !seen {
			b = &bucket{key: key, name: line.Description, id: line.ProductID}
			index[key] = b
			ordered = append(ordered, b)
		}
		b.sales += line.Quantity
		b.revenue = b.revenue.Add(decimal.NewFromFloat(line.ValueBRL))
	}
	return ordered
}

// TopProducts returns the n best selling products by quantity, highest first. Ties keep the order
// in which the products first appear in lines.
func TopProducts(lines []model.SaleLine, n int) []TopProduct {
	if n <= 0 {
		n = DefaultTopN
	}

	buckets := group(lines, func(l model.SaleLine) (string, bool) { return l.ProductID.String(), true })
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].sales > buckets[j].sales })
	if len(buckets) > n {
		buckets = buckets[:n]
	}

	out := make([]TopProduct, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, TopProduct{ProductID: b.id, Name: b.name, Sales: b.sales, Revenue: b.revenue.Round(2).InexactFloat64()})
	}
	return out
}

// RevenueByDay sums revenue per UTC calendar day. lines must be chronological; so is the result.
func RevenueByDay(lines []model.SaleLine) []DailyRevenue {
	buckets := group(lines, func(l model.SaleLine) (string, bool) { return l.SaleDate.UTC().Format(dayLayout), true })

	out := make([]DailyRevenue, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, DailyRevenue{Date: b.key, Total: b.revenue.Round(2).InexactFloat64()})
	}
	return out
}

// RevenueByCategory attributes each sale to the first category of its product. Sales of products
// without categories are left out.
func RevenueByCategory(lines []model.SaleLine) []CategoryRevenue {
	buckets := group(lines, func(l model.SaleLine) (string, bool) {
		if len(l.Categories) == 0 || l.Categories[0] == "" {
			return "", false
		}
		return l.Categories[0], true
	})

	out := make([]CategoryRevenue, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, CategoryRevenue{
			Name:    b.key,
			Sales:   b.sales,
			Revenue: b.revenue.Round(2).InexactFloat64(),
			Color:   CategoryColor(b.key),
		})
	}
	return out
}

// CategoryColor returns the palette colour of a known category and a stable hash-derived colour otherwise.
func CategoryColor(category string) string {
	if color, ok := categoryPalette[category]; ok {
		return color
	}
	return fmt.Sprintf("#%06x", xxhash.Sum64String(category)%0xFFFFFF)
}
