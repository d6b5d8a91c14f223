package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/db"
	"github.com/erazemk/dresi/internal/ledger"
	"github.com/erazemk/dresi/internal/model"
)

func TestProducts_CreateAndGet(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")

	products := &Products{DB: database}
	p, err := products.Create(ctx, model.ProductInput{
		Name:      "Away 23/24",
		Type:      model.ProductTypeKidKit,
		Sizes:     []model.SizeQuantity{{Size: "M", Quantity: 3}, {Size: "S", Quantity: 1}},
		Price:     decimal.RequireFromString("49.99"),
		SalePrice: decimal.NewNullDecimal(decimal.RequireFromString("39.99")),
		IsOnSale:  true,
		KitTypeID: kt.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Status != model.StatusActive {
		t.Errorf("expected active, got %q", p.Status)
	}
	if !p.Price.Equal(decimal.RequireFromString("49.99")) {
		t.Errorf("expected price 49.99, got %s", p.Price)
	}
	if !p.SalePrice.Valid || !p.IsOnSale {
		t.Errorf("expected sale price set and on sale, got %+v", p)
	}
	if len(p.Sizes) != 2 || p.Sizes[0].Size != "M" || p.Sizes[1].Size != "S" {
		t.Errorf("expected sizes in insertion order, got %+v", p.Sizes)
	}
	if p.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestProducts_CreateUnknownKitType(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := (&Products{DB: database}).Create(context.Background(), model.ProductInput{
		Name: "X", Type: model.ProductTypeShirt, Price: decimal.NewFromInt(1), KitTypeID: 42,
	})
	if !errors.Is(err, apperr.ErrForeignKey) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestProducts_CreateDuplicateSize(t *testing.T) {
	database := db.NewTestDB(t)
	kt := seedKitType(t, database, "Home")

	_, err := (&Products{DB: database}).Create(context.Background(), model.ProductInput{
		Name: "X", Type: model.ProductTypeShirt, Price: decimal.NewFromInt(1), KitTypeID: kt.ID,
		Sizes: []model.SizeQuantity{{Size: "M", Quantity: 1}, {Size: "M", Quantity: 2}},
	})
	if !errors.Is(err, apperr.ErrUnique) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	list, _ := (&Products{DB: database}).List(context.Background())
	if len(list) != 0 {
		t.Fatalf("expected rollback of product row, got %d products", len(list))
	}
}

func TestProducts_UpdateReplacesSizes(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID, model.SizeQuantity{Size: "M", Quantity: 3})

	products := &Products{DB: database}
	name := "Renamed"
	got, err := products.Update(ctx, p.ID, model.ProductPatch{
		Name:  &name,
		Sizes: []model.SizeQuantity{{Size: "L", Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("expected renamed, got %q", got.Name)
	}
	if len(got.Sizes) != 1 || got.Sizes[0].Size != "L" || got.Sizes[0].Quantity != 5 {
		t.Errorf("expected sizes replaced, got %+v", got.Sizes)
	}

	if _, err := products.Update(ctx, 999, model.ProductPatch{Name: &name}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestProducts_ArchiveRestore(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID, model.SizeQuantity{Size: "M", Quantity: 3})
	products := &Products{DB: database}

	if _, err := products.Archive(ctx, p.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	active, _ := products.List(ctx)
	archived, _ := products.ListArchived(ctx)
	if len(active) != 0 || len(archived) != 1 {
		t.Fatalf("expected 0 active and 1 archived, got %d and %d", len(active), len(archived))
	}
	if len(archived[0].Sizes) != 1 {
		t.Errorf("expected archived product to keep its sizes, got %+v", archived[0].Sizes)
	}

	if _, err := products.Restore(ctx, p.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	active, _ = products.List(ctx)
	if len(active) != 1 {
		t.Fatalf("expected restored product, got %d active", len(active))
	}

	if _, err := products.Archive(ctx, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestProducts_DeleteIsIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID, model.SizeQuantity{Size: "M", Quantity: 3})
	products := &Products{DB: database}

	if err := products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := products.Get(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestProducts_DeleteReferencedBySale(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID, model.SizeQuantity{Size: "M", Quantity: 3})

	_, err := (&Sales{DB: database}).Create(ctx, model.SaleInput{
		Items: []model.LineItem{item(p.ID, "M", 1, 40)}, SaleType: model.SaleTypeOLX,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := (&Products{DB: database}).Delete(ctx, p.ID); !errors.Is(err, apperr.ErrForeignKey) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestProducts_AdjustSizes(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID,
		model.SizeQuantity{Size: "M", Quantity: 3},
		model.SizeQuantity{Size: "L", Quantity: 1},
	)
	products := &Products{DB: database}

	got, err := products.AdjustSizes(ctx, p.ID, ledger.SizeDeltas{"M": -2, "L": 4})
	if err != nil {
		t.Fatalf("AdjustSizes: %v", err)
	}
	if q, _ := got.SizeQuantity("M"); q != 1 {
		t.Errorf("expected M=1, got %d", q)
	}
	if q, _ := got.SizeQuantity("L"); q != 5 {
		t.Errorf("expected L=5, got %d", q)
	}
}

func TestProducts_AdjustSizesShortfallAppliesNothing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID,
		model.SizeQuantity{Size: "L", Quantity: 3},
		model.SizeQuantity{Size: "M", Quantity: 1},
	)
	products := &Products{DB: database}

	_, err := products.AdjustSizes(ctx, p.ID, ledger.SizeDeltas{"L": -1, "M": -2})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, _ := products.Get(ctx, p.ID)
	if q, _ := got.SizeQuantity("L"); q != 3 {
		t.Errorf("expected L untouched at 3, got %d", q)
	}
	if q, _ := got.SizeQuantity("M"); q != 1 {
		t.Errorf("expected M untouched at 1, got %d", q)
	}
}

func TestProducts_AdjustSizesUnknown(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	p := seedProduct(t, database, kt.ID, model.SizeQuantity{Size: "M", Quantity: 3})
	products := &Products{DB: database}

	if _, err := products.AdjustSizes(ctx, p.ID, ledger.SizeDeltas{"XL": -1}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for unknown size, got %v", err)
	}
	if _, err := products.AdjustSizes(ctx, 999, ledger.SizeDeltas{"M": 1}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for unknown product, got %v", err)
	}
}
