package sales

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/dresi/internal/catalog"
	"github.com/erazemk/dresi/internal/db"
	"github.com/erazemk/dresi/internal/ledger"
	"github.com/erazemk/dresi/internal/model"
	"github.com/erazemk/dresi/internal/saga"
	"github.com/erazemk/dresi/internal/store"
)

type fixture struct {
	db           *sql.DB
	products     *catalog.ProductStore
	adjuster     *flakyAdjuster
	sales        *SaleRecorder
	reservations *ReservationManager
	returns      *ReturnRecorder
	kitTypeID    int64
}

func newFixture(t *testing.T, mode saga.Mode) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	kt, err := (&store.KitTypes{DB: database}).Create(ctx, model.KitTypeInput{Name: "Home"})
	if err != nil {
		t.Fatalf("creating kit type: %v", err)
	}

	products := catalog.NewProductStore(&store.Products{DB: database})
	adjuster := &flakyAdjuster{StockAdjuster: products, failOn: make(map[int64]error)}
	sales := NewSaleRecorder(&store.Sales{DB: database}, adjuster, mode)
	f := &fixture{
		db:           database,
		products:     products,
		adjuster:     adjuster,
		sales:        sales,
		reservations: NewReservationManager(&store.Reservations{DB: database}, adjuster, &store.Sales{DB: database}, sales),
		returns:      NewReturnRecorder(&store.Returns{DB: database}, adjuster),
		kitTypeID:    kt.ID,
	}
	fixed := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	f.sales.now, f.reservations.now, f.returns.now = fixed, fixed, fixed
	return f
}

func (f *fixture) product(t *testing.T, sizes ...model.SizeQuantity) model.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), model.ProductInput{
		Name:      "Home 24/25",
		Type:      model.ProductTypeShirt,
		Sizes:     sizes,
		Price:     decimal.NewFromInt(40),
		KitTypeID: f.kitTypeID,
	})
	if err != nil {
		t.Fatalf("creating product: %v", err)
	}
	return p
}

func (f *fixture) quantity(t *testing.T, productID int64, size string) int {
	t.Helper()
	p, ok := f.products.Get(productID)
	if !ok {
		t.Fatalf("product %d not loaded", productID)
	}
	q, ok := p.SizeQuantity(size)
	if !ok {
		t.Fatalf("product %d has no size %s", productID, size)
	}

	stored, err := (&store.Products{DB: f.db}).Get(context.Background(), productID)
	if err != nil {
		t.Fatalf("loading product %d: %v", productID, err)
	}
	if sq, _ := stored.SizeQuantity(size); sq != q {
		t.Fatalf("product %d size %s: local %d, stored %d", productID, size, q, sq)
	}
	return q
}

func item(productID int64, size string, qty int) model.LineItem {
	return model.LineItem{ProductID: productID, Size: size, Quantity: qty, PriceSold: decimal.NewFromInt(35)}
}

func sz(size string, qty int) model.SizeQuantity {
	return model.SizeQuantity{Size: size, Quantity: qty}
}

// flakyAdjuster counts stock calls and fails them for selected products.
type flakyAdjuster struct {
	StockAdjuster
	failOn  map[int64]error
	calls   map[int64]int
	reloads int
}

func (a *flakyAdjuster) AdjustStock(ctx context.Context, id int64, d ledger.SizeDeltas) (model.Product, error) {
	if a.calls == nil {
		a.calls = make(map[int64]int)
	}
	a.calls[id]++
	if err, ok := a.failOn[id]; ok {
		return model.Product{}, err
	}
	return a.StockAdjuster.AdjustStock(ctx, id, d)
}

func (a *flakyAdjuster) Reload(ctx context.Context) error {
	a.reloads++
	return a.StockAdjuster.Reload(ctx)
}

var errInjected = errors.New("injected failure")
