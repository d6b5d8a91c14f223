package sales

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/model"
	"github.com/erazemk/dresi/internal/saga"
	"github.com/erazemk/dresi/internal/store"
)

func reservationInput(items ...model.LineItem) model.ReservationInput {
	return model.ReservationInput{
		Items:        items,
		CustomerName: "Luka",
		ExpiringDate: time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
		Location:     "Ljubljana",
	}
}

func TestReservation_CreateAndComplete(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	r, err := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 2)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status != model.ReservationPending {
		t.Errorf("expected pending, got %q", r.Status)
	}
	if q := f.quantity(t, p.ID, "L"); q != 3 {
		t.Fatalf("expected L=3 after hold, got %d", q)
	}

	completed, sale, err := f.reservations.Complete(ctx, r.ID, CompleteInput{SaleType: model.SaleTypeOLX})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != model.ReservationCompleted {
		t.Errorf("expected completed, got %q", completed.Status)
	}
	if len(sale.Items) != 1 || sale.Items[0].ProductID != p.ID || sale.Items[0].Size != "L" || sale.Items[0].Quantity != 2 {
		t.Errorf("unexpected sale items %+v", sale.Items)
	}
	if sale.CustomerName != "Luka" || sale.SaleType != model.SaleTypeOLX {
		t.Errorf("unexpected sale metadata %+v", sale)
	}
	if sale.ReservationID == nil || *sale.ReservationID != r.ID {
		t.Errorf("expected sale linked to reservation %d, got %v", r.ID, sale.ReservationID)
	}
	if q := f.quantity(t, p.ID, "L"); q != 3 {
		t.Errorf("expected L to stay 3 after completion, got %d", q)
	}
	if _, ok := f.sales.Get(sale.ID); !ok {
		t.Error("expected sales collection reloaded with the new sale")
	}
	if got, _ := f.reservations.Get(r.ID); got.Status != model.ReservationCompleted {
		t.Errorf("expected local reservation completed, got %q", got.Status)
	}
}

func TestReservation_CompleteDefaults(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	r, _ := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 1)))
	_, sale, err := f.reservations.Complete(ctx, r.ID, CompleteInput{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if sale.SaleType != model.SaleTypeInPerson {
		t.Errorf("expected in-person default, got %q", sale.SaleType)
	}
	if !sale.Date.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("expected date defaulted to now, got %v", sale.Date)
	}
}

func TestReservation_CompleteTwiceRejected(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	r, _ := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 1)))
	if _, _, err := f.reservations.Complete(ctx, r.ID, CompleteInput{}); err != nil {
		t.Fatal(err)
	}
	_, _, err := f.reservations.Complete(ctx, r.ID, CompleteInput{})
	var verrs apperr.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
	list, _ := (&store.Sales{DB: f.db}).List(ctx)
	if len(list) != 1 {
		t.Errorf("expected a single sale, got %d", len(list))
	}
}

type failingStatus struct {
	ReservationRepository
}

func (failingStatus) SetStatus(context.Context, int64, string) (model.Reservation, error) {
	return model.Reservation{}, apperr.New(apperr.CodeUnavailable, "setting reservation status", errInjected)
}

func TestReservation_CompleteFailureRemovesSale(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	m := NewReservationManager(failingStatus{&store.Reservations{DB: f.db}}, f.adjuster, &store.Sales{DB: f.db}, f.sales)
	r, err := m.Create(ctx, reservationInput(item(p.ID, "L", 2)))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := m.Complete(ctx, r.ID, CompleteInput{}); !errors.Is(err, apperr.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	list, _ := (&store.Sales{DB: f.db}).List(ctx)
	if len(list) != 0 {
		t.Errorf("expected compensating sale delete, got %d sales", len(list))
	}
	if got, _ := m.Get(r.ID); got.Status != model.ReservationPending {
		t.Errorf("expected reservation still pending, got %q", got.Status)
	}
}

func TestReservation_DeletePendingRestoresStock(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 3))

	r, err := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 2)))
	if err != nil {
		t.Fatal(err)
	}
	if q := f.quantity(t, p.ID, "L"); q != 1 {
		t.Fatalf("expected L=1 after hold, got %d", q)
	}

	if err := f.reservations.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if q := f.quantity(t, p.ID, "L"); q != 3 {
		t.Errorf("expected L restored to 3, got %d", q)
	}
	if f.adjuster.reloads != 1 {
		t.Errorf("expected products reloaded once, got %d", f.adjuster.reloads)
	}
	if len(f.reservations.List()) != 0 {
		t.Error("expected reservation removed")
	}
}

func TestReservation_DeleteCompletedKeepsStock(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	r, _ := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 2)))
	f.reservations.Complete(ctx, r.ID, CompleteInput{})

	if err := f.reservations.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if q := f.quantity(t, p.ID, "L"); q != 3 {
		t.Errorf("expected L to stay 3, got %d", q)
	}
	sales, _ := (&store.Sales{DB: f.db}).List(ctx)
	if len(sales) != 1 {
		t.Errorf("expected the sale to survive, got %d", len(sales))
	}
}

func TestReservation_DeleteRestoreFailureKeepsReservation(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	a := f.product(t, sz("L", 5))
	b := f.product(t, sz("L", 5))

	r, err := f.reservations.Create(ctx, reservationInput(item(a.ID, "L", 2), item(b.ID, "L", 1)))
	if err != nil {
		t.Fatal(err)
	}
	f.adjuster.failOn[b.ID] = errInjected

	err = f.reservations.Delete(ctx, r.ID)
	var partial *apperr.PartialError
	if !errors.As(err, &partial) {
		t.Fatalf("expected partial error, got %v", err)
	}
	if q := f.quantity(t, a.ID, "L"); q != 3 {
		t.Errorf("expected first product re-held at 3, got %d", q)
	}
	if _, err := (&store.Reservations{DB: f.db}).Get(ctx, r.ID); err != nil {
		t.Errorf("expected reservation kept, got %v", err)
	}
	if f.reservations.Err() == "" {
		t.Error("expected error state")
	}
}

func TestReservation_DeleteUnknownIsNoop(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	if err := f.reservations.Delete(context.Background(), 42); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestReservation_CreateRejectsOversell(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 1))

	_, err := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 2)))
	var verrs apperr.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
	list, _ := (&store.Reservations{DB: f.db}).List(ctx)
	if len(list) != 0 {
		t.Errorf("expected no reservation persisted, got %d", len(list))
	}
	if q := f.quantity(t, p.ID, "L"); q != 1 {
		t.Errorf("expected L untouched, got %d", q)
	}
}

func TestReservation_CreateFailedHoldSavesNothing(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	a := f.product(t, sz("L", 5))
	b := f.product(t, sz("L", 5))
	f.adjuster.failOn[b.ID] = errInjected

	_, err := f.reservations.Create(ctx, reservationInput(item(a.ID, "L", 2), item(b.ID, "L", 1)))
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if q := f.quantity(t, a.ID, "L"); q != 5 {
		t.Errorf("expected hold rolled back, got %d", q)
	}
	list, _ := (&store.Reservations{DB: f.db}).List(ctx)
	if len(list) != 0 {
		t.Errorf("expected no stored reservation, got %d", len(list))
	}
	if got := f.reservations.List(); len(got) != 0 {
		t.Errorf("expected no local reservation, got %d", len(got))
	}
}

func storedQuantity(t *testing.T, database *sql.DB, productID int64, size string) int {
	t.Helper()
	p, err := (&store.Products{DB: database}).Get(context.Background(), productID)
	if err != nil {
		t.Fatalf("loading product %d: %v", productID, err)
	}
	q, _ := p.SizeQuantity(size)
	return q
}

func TestReservation_CreateOnStaleStockThenDeleteKeepsStock(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	// Another writer took stock behind the loaded collection.
	if _, err := f.db.ExecContext(ctx, "UPDATE product_sizes SET quantity = 1 WHERE product_id = ? AND size = 'L'", p.ID); err != nil {
		t.Fatal(err)
	}

	r, err := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 2)))
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if r.ID != 0 {
		t.Errorf("expected no reservation returned, got id %d", r.ID)
	}
	if got := f.reservations.List(); len(got) != 0 {
		t.Fatalf("expected no local reservation, got %d", len(got))
	}
	list, _ := (&store.Reservations{DB: f.db}).List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected no stored reservation, got %d", len(list))
	}

	if err := f.reservations.Delete(ctx, 1); err != nil {
		t.Errorf("expected delete of a missing reservation to be a no-op, got %v", err)
	}
	if q := storedQuantity(t, f.db, p.ID, "L"); q != 1 {
		t.Errorf("expected stored L to stay 1, got %d", q)
	}
}

type failingCreate struct {
	ReservationRepository
}

func (failingCreate) Create(context.Context, model.ReservationInput) (model.Reservation, error) {
	return model.Reservation{}, apperr.New(apperr.CodeUnavailable, "creating reservation", errInjected)
}

func TestReservation_CreatePersistFailureReleasesHold(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	m := NewReservationManager(failingCreate{&store.Reservations{DB: f.db}}, f.adjuster, &store.Sales{DB: f.db}, f.sales)
	if _, err := m.Create(ctx, reservationInput(item(p.ID, "L", 2))); !errors.Is(err, apperr.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if q := f.quantity(t, p.ID, "L"); q != 5 {
		t.Errorf("expected hold released, got L=%d", q)
	}
	if got := m.List(); len(got) != 0 {
		t.Errorf("expected no local reservation, got %d", len(got))
	}
}

func TestReservation_EditValidatesAgainstHeldStock(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 3))

	r, err := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 2)))
	if err != nil {
		t.Fatal(err)
	}

	// Only 1 is left after the hold, so keeping the same quantity is rejected.
	_, err = f.reservations.Edit(ctx, r.ID, reservationInput(item(p.ID, "L", 2)))
	var verrs apperr.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}

	edited, err := f.reservations.Edit(ctx, r.ID, reservationInput(item(p.ID, "L", 1)))
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edited.Items[0].Quantity != 1 {
		t.Errorf("expected edited quantity 1, got %d", edited.Items[0].Quantity)
	}
	if q := f.quantity(t, p.ID, "L"); q != 1 {
		t.Errorf("expected edit not to move stock, got %d", q)
	}
}

func TestReservation_EditCompletedRejected(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	r, _ := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 1)))
	f.reservations.Complete(ctx, r.ID, CompleteInput{})

	_, err := f.reservations.Edit(ctx, r.ID, reservationInput(item(p.ID, "L", 1)))
	var verrs apperr.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReservation_ExpiryIsAdvisory(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	in := reservationInput(item(p.ID, "L", 1))
	in.ExpiringDate = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	r, err := f.reservations.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	fresh, _ := f.reservations.Create(ctx, reservationInput(item(p.ID, "L", 1)))

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expired := f.reservations.ListExpired(now)
	if len(expired) != 1 || expired[0].ID != r.ID {
		t.Fatalf("expected only the old reservation expired, got %+v", expired)
	}
	if fresh.Expired(now) {
		t.Error("fresh reservation should not be expired")
	}
	if q := f.quantity(t, p.ID, "L"); q != 3 {
		t.Errorf("expected expiry not to move stock, got %d", q)
	}

	if _, _, err := f.reservations.Complete(ctx, r.ID, CompleteInput{}); err != nil {
		t.Fatalf("expected expired reservation to complete, got %v", err)
	}
	if len(f.reservations.ListExpired(now)) != 0 {
		t.Error("completed reservations are never expired")
	}
}

func TestReservation_Reload(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("L", 5))

	if _, err := (&store.Reservations{DB: f.db}).Create(ctx, reservationInput(item(p.ID, "L", 1))); err != nil {
		t.Fatal(err)
	}
	if err := f.reservations.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(f.reservations.List()) != 1 {
		t.Errorf("expected 1 reservation, got %d", len(f.reservations.List()))
	}
}

func TestStockNeverNegative(t *testing.T) {
	f := newFixture(t, saga.BestEffort)
	ctx := context.Background()
	p := f.product(t, sz("S", 2), sz("M", 3))

	var held []int64
	for i := 0; i < 12; i++ {
		size := []string{"S", "M"}[i%2]
		switch i % 3 {
		case 0:
			f.sales.Record(ctx, model.SaleInput{Items: []model.LineItem{item(p.ID, size, 1)}, SaleType: model.SaleTypeOLX})
		case 1:
			if r, err := f.reservations.Create(ctx, reservationInput(item(p.ID, size, 2))); err == nil {
				held = append(held, r.ID)
			}
		case 2:
			if len(held) > 0 {
				f.reservations.Delete(ctx, held[0])
				held = held[1:]
			}
		}

		for _, s := range []string{"S", "M"} {
			if q := f.quantity(t, p.ID, s); q < 0 {
				t.Fatalf("step %d: size %s went negative (%d)", i, s, q)
			}
		}
	}
}
