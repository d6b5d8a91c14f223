package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/erazemk/dresi/internal/model"
)

func seedKitType(t *testing.T, database *sql.DB, name string) model.KitType {
	t.Helper()
	kt, err := (&KitTypes{DB: database}).Create(context.Background(), model.KitTypeInput{Name: name})
	if err != nil {
		t.Fatalf("creating kit type: %v", err)
	}
	return kt
}

func seedProduct(t *testing.T, database *sql.DB, kitTypeID int64, sizes ...model.SizeQuantity) model.Product {
	t.Helper()
	p, err := (&Products{DB: database}).Create(context.Background(), model.ProductInput{
		Name:      "Home 24/25",
		Type:      model.ProductTypeShirt,
		Sizes:     sizes,
		Price:     decimal.NewFromInt(40),
		KitTypeID: kitTypeID,
	})
	if err != nil {
		t.Fatalf("creating product: %v", err)
	}
	return p
}

func item(productID int64, size string, qty int, price int64) model.LineItem {
	return model.LineItem{ProductID: productID, Size: size, Quantity: qty, PriceSold: decimal.NewFromInt(price)}
}
