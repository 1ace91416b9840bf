package service

import (
	"context"
	"errors"
	"log/slog"
)

// DemoUser and DemoPassword are the credentials created by SeedDemoData.
const (
	DemoUser     = "user@example.com"
	DemoPassword = "secret"
)

var demoProducts = []ProductInput{
	{
		Description:       "Notebook Dell Inspiron",
		ImageURL:          "https://images.unsplash.com/photo-1593642632823-8f785ba67e45",
		Quantity:          15,
		SuggestedQuantity: 10,
		PriceBRL:          4500.00,
		Categories:        []string{"Eletrônicos"},
	},
	{
		Description:       "Camiseta Branca Básica",
		ImageURL:          "https://images.unsplash.com/photo-1529374255404-311a2a4f1fd9",
		Quantity:          8,
		SuggestedQuantity: 12,
		PriceBRL:          59.90,
		Categories:        []string{"Roupas"},
	},
	{
		Description:       "Arroz Integral 5kg",
		ImageURL:          "https://images.unsplash.com/photo-1547496502-affa22d38842",
		Quantity:          20,
		SuggestedQuantity: 25,
		PriceBRL:          22.50,
		Categories:        []string{"Alimentos"},
	},
}

// SeedDemoData creates the demo account when missing and gives it three products when it has none.
func SeedDemoData(ctx context.Context, users *AuthService, products *ProductService) error {
	if _, err := users.Register(ctx, DemoUser, DemoPassword); err != nil && !errors.Is(err, ErrUserExists) {
		return err
	}

	existing, err := products.ListProducts(ctx, DemoUser, "", nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, in := range demoProducts {
		if _, err := products.createProduct(ctx, DemoUser, in, historyReasonSeeded); err != nil {
			return err
		}
	}
	slog.Info("Demo data seeded", slog.String("owner", DemoUser), slog.Int("products", len(demoProducts)))
	return nil
}
