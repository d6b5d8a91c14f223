package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/db"
	"github.com/erazemk/dresi/internal/model"
)

func TestSales_CreateGetUpdateDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID, model.SizeQuantity{Size: "M", Quantity: 3})
	sales := &Sales{DB: database}

	date := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	sale, err := sales.Create(ctx, model.SaleInput{
		Items:        []model.LineItem{item(p.ID, "M", 2, 35)},
		CustomerName: "Ana",
		Date:         date,
		SaleType:     model.SaleTypeVinted,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !sale.Date.Equal(date) {
		t.Errorf("expected date %v, got %v", date, sale.Date)
	}
	if len(sale.Items) != 1 || !sale.Items[0].PriceSold.Equal(decimal.NewFromInt(35)) {
		t.Errorf("unexpected items %+v", sale.Items)
	}
	if !sale.Total().Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected total 70, got %s", sale.Total())
	}

	name := "Ana K."
	sale, err = sales.Update(ctx, sale.ID, model.SalePatch{
		CustomerName: &name,
		Items:        []model.LineItem{item(p.ID, "M", 1, 30)},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if sale.CustomerName != "Ana K." || len(sale.Items) != 1 || sale.Items[0].Quantity != 1 {
		t.Errorf("unexpected sale after update %+v", sale)
	}

	if err := sales.Delete(ctx, sale.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := sales.Get(ctx, sale.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	var n int
	database.QueryRow(`SELECT COUNT(*) FROM sale_items`).Scan(&n)
	if n != 0 {
		t.Errorf("expected sale items removed with sale, got %d", n)
	}
}

func TestSales_ListNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID, model.SizeQuantity{Size: "M", Quantity: 3})
	sales := &Sales{DB: database}

	for i, day := range []int{1, 3, 2} {
		_, err := sales.Create(ctx, model.SaleInput{
			Items:    []model.LineItem{item(p.ID, "M", i+1, 10)},
			Date:     time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
			SaleType: model.SaleTypeOLX,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	list, err := sales.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 sales, got %d", len(list))
	}
	if list[0].Date.Day() != 3 || list[2].Date.Day() != 1 {
		t.Errorf("expected newest first, got %v, %v, %v", list[0].Date, list[1].Date, list[2].Date)
	}
	if list[0].Items[0].Quantity != 2 {
		t.Errorf("expected items attached to matching sale, got %+v", list[0].Items)
	}
}

func TestSales_InvalidSaleType(t *testing.T) {
	database := db.NewTestDB(t)
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID, model.SizeQuantity{Size: "M", Quantity: 3})

	_, err := (&Sales{DB: database}).Create(context.Background(), model.SaleInput{
		Items: []model.LineItem{item(p.ID, "M", 1, 10)}, SaleType: "EBAY",
	})
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Fatalf("expected malformed input, got %v", err)
	}
}
