package sales

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/model"
	"github.com/erazemk/dresi/internal/saga"
)

// ReservationRepository persists reservations.
type ReservationRepository interface {
	Create(ctx context.Context, in model.ReservationInput) (model.Reservation, error)
	Get(ctx context.Context, id int64) (model.Reservation, error)
	Update(ctx context.Context, id int64, in model.ReservationInput) (model.Reservation, error)
	SetStatus(ctx context.Context, id int64, status string) (model.Reservation, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Reservation, error)
}

// SaleWriter persists the sale produced by completing a reservation.
type SaleWriter interface {
	Create(ctx context.Context, in model.SaleInput) (model.Sale, error)
	Delete(ctx context.Context, id int64) error
}

// CompleteInput overrides the sale metadata taken from the reservation.
type CompleteInput struct {
	CustomerName string     `json:"customer_name"`
	Date         *time.Time `json:"date,omitempty"`
	SaleType     string     `json:"sale_type"`
}

// ReservationManager runs the reservation lifecycle: pending reservations
// hold stock by decrementing it at creation; deleting a pending reservation
// gives the stock back; completing one turns it into a sale.
type ReservationManager struct {
	repo     ReservationRepository
	products StockAdjuster
	saleRepo SaleWriter
	saleView Reloader
	now      clock

	write        sync.Mutex
	reservations journal[model.Reservation]
	state        apperr.State
}

// NewReservationManager wires a manager. saleView is reloaded after a
// completion so it lists the new sale.
func NewReservationManager(repo ReservationRepository, products StockAdjuster, saleRepo SaleWriter, saleView Reloader) *ReservationManager {
	return &ReservationManager{
		repo:     repo,
		products: products,
		saleRepo: saleRepo,
		saleView: saleView,
	}
}

func (m *ReservationManager) validate(in model.ReservationInput) error {
	errs := validateItems(m.products, in.Items, true)
	if strings.TrimSpace(in.CustomerName) == "" {
		errs.Add("customer_name", "is required")
	}
	if in.ExpiringDate.IsZero() {
		errs.Add("expiring_date", "is required")
	}
	validateSaleType(&errs, in.SaleType, false)
	return errs.Err()
}

// Create validates in against current stock, takes the held quantities
// from each product and then persists a pending reservation. A hold that
// fails part way is rolled back and nothing is saved, so every pending
// reservation holds exactly its items.
func (m *ReservationManager) Create(ctx context.Context, in model.ReservationInput) (model.Reservation, error) {
	m.write.Lock()
	defer m.write.Unlock()

	if err := m.validate(in); err != nil {
		return model.Reservation{}, m.fail(err)
	}

	res := saga.Run(ctx, saga.Compensate, stockSteps(m.products, in.Items, -1)...)
	if !res.OK() {
		for _, f := range res.CompensationFailed {
			slog.Error("releasing stock after failed hold", "step", f.Step, "error", f.Err)
		}
		return model.Reservation{}, m.fail(res.Failed[0].Err)
	}

	r, err := m.repo.Create(ctx, in)
	if err != nil {
		res.Rollback(ctx)
		for _, f := range res.CompensationFailed {
			slog.Error("releasing stock after failed reservation", "step", f.Step, "error", f.Err)
		}
		return model.Reservation{}, m.fail(err)
	}

	m.reservations.add(r)
	slog.Info("reservation created", "reservation", r.ID, "customer", r.CustomerName, "items", len(r.Items))
	m.state.Clear()
	return r, nil
}

// Edit replaces the items and metadata of a pending reservation. Items are
// validated against current stock, which already excludes this
// reservation's original hold; stock is not moved.
func (m *ReservationManager) Edit(ctx context.Context, id int64, in model.ReservationInput) (model.Reservation, error) {
	m.write.Lock()
	defer m.write.Unlock()

	current, err := m.lookup(ctx, id)
	if err != nil {
		return model.Reservation{}, m.fail(err)
	}
	if current.Status != model.ReservationPending {
		return model.Reservation{}, m.fail(notPending(current))
	}
	if err := m.validate(in); err != nil {
		return model.Reservation{}, m.fail(err)
	}

	r, err := m.repo.Update(ctx, id, in)
	if err != nil {
		return model.Reservation{}, m.fail(err)
	}
	m.reservations.replace(r)
	m.state.Clear()
	return r, nil
}

// Delete removes a reservation. A pending reservation first gives its held
// stock back; if that fails the reservation is kept and the restored
// products are decremented again. Products are reloaded afterwards.
// A completed reservation is removed without touching stock.
func (m *ReservationManager) Delete(ctx context.Context, id int64) error {
	m.write.Lock()
	defer m.write.Unlock()

	r, err := m.lookup(ctx, id)
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		m.reservations.remove(id)
		m.state.Clear()
		return nil
	}
	if err != nil {
		return m.fail(err)
	}

	if r.Status != model.ReservationPending {
		if err := m.repo.Delete(ctx, id); err != nil {
			return m.fail(err)
		}
		m.reservations.remove(id)
		m.state.Clear()
		return nil
	}

	res := saga.Run(ctx, saga.Compensate, stockSteps(m.products, r.Items, +1)...)
	if !res.OK() {
		return m.fail(res.Err("restoring reserved stock"))
	}

	if err := m.repo.Delete(ctx, id); err != nil {
		res.Rollback(ctx)
		for _, f := range res.CompensationFailed {
			slog.Error("re-holding stock after failed delete", "reservation", id, "step", f.Step, "error", f.Err)
		}
		return m.fail(err)
	}
	m.reservations.remove(id)

	if err := m.products.Reload(ctx); err != nil {
		slog.Warn("reloading products after reservation delete", "reservation", id, "error", err)
	}

	slog.Info("reservation deleted, stock restored", "reservation", id)
	m.state.Clear()
	return nil
}

// Complete turns a pending reservation into a sale and marks it completed.
// Stock was already taken when the reservation was created and is not
// touched again. Unset metadata falls back to the reservation's values,
// the current time and an in-person sale.
func (m *ReservationManager) Complete(ctx context.Context, id int64, meta CompleteInput) (model.Reservation, model.Sale, error) {
	m.write.Lock()
	defer m.write.Unlock()

	r, err := m.lookup(ctx, id)
	if err != nil {
		return model.Reservation{}, model.Sale{}, m.fail(err)
	}
	if r.Status != model.ReservationPending {
		return model.Reservation{}, model.Sale{}, m.fail(notPending(r))
	}

	in := model.SaleInput{
		Items:         r.Items,
		CustomerName:  firstNonEmpty(meta.CustomerName, r.CustomerName),
		SaleType:      firstNonEmpty(meta.SaleType, r.SaleType, model.SaleTypeInPerson),
		ReservationID: &r.ID,
	}
	if meta.Date != nil {
		in.Date = *meta.Date
	} else {
		in.Date = m.now.now()
	}

	var errs apperr.ValidationErrors
	validateSaleType(&errs, in.SaleType, true)
	if err := errs.Err(); err != nil {
		return model.Reservation{}, model.Sale{}, m.fail(err)
	}

	var sale model.Sale
	var completed model.Reservation
	res := saga.Run(ctx, saga.Compensate,
		saga.Step{
			Name: "create sale",
			Forward: func(ctx context.Context) error {
				var err error
				sale, err = m.saleRepo.Create(ctx, in)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return m.saleRepo.Delete(ctx, sale.ID)
			},
		},
		saga.Step{
			Name: "mark completed",
			Forward: func(ctx context.Context) error {
				var err error
				completed, err = m.repo.SetStatus(ctx, r.ID, model.ReservationCompleted)
				return err
			},
		},
	)
	if !res.OK() {
		for _, f := range res.CompensationFailed {
			slog.Error("removing sale after failed completion", "reservation", id, "step", f.Step, "error", f.Err)
		}
		return model.Reservation{}, model.Sale{}, m.fail(res.Failed[0].Err)
	}
	m.reservations.replace(completed)

	if m.saleView != nil {
		if err := m.saleView.Reload(ctx); err != nil {
			slog.Warn("reloading sales after completion", "reservation", id, "error", err)
		}
	}

	slog.Info("reservation completed", "reservation", id, "sale", sale.ID)
	m.state.Clear()
	return completed, sale, nil
}

// Reload refetches every reservation.
func (m *ReservationManager) Reload(ctx context.Context) error {
	m.write.Lock()
	defer m.write.Unlock()

	list, err := m.repo.List(ctx)
	if err != nil {
		return m.fail(err)
	}
	m.reservations.set(list)
	m.state.Clear()
	return nil
}

// List returns the loaded reservations.
func (m *ReservationManager) List() []model.Reservation {
	return m.reservations.list()
}

// ListExpired returns pending reservations past their expiring date. Expiry
// is informational; expired reservations can still be completed or deleted.
func (m *ReservationManager) ListExpired(now time.Time) []model.Reservation {
	var out []model.Reservation
	for _, r := range m.reservations.list() {
		if r.Expired(now) {
			out = append(out, r)
		}
	}
	return out
}

// Get returns a loaded reservation.
func (m *ReservationManager) Get(id int64) (model.Reservation, bool) {
	return m.reservations.get(id)
}

// Err returns the message of the last failed operation, or "".
func (m *ReservationManager) Err() string {
	return m.state.Message()
}

// ClearError resets the error message.
func (m *ReservationManager) ClearError() {
	m.state.Clear()
}

// lookup finds a reservation locally, falling back to persistence for one
// created elsewhere.
func (m *ReservationManager) lookup(ctx context.Context, id int64) (model.Reservation, error) {
	if r, ok := m.reservations.get(id); ok {
		return r, nil
	}
	r, err := m.repo.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	return r, nil
}

func (m *ReservationManager) fail(err error) error {
	m.state.Set(err)
	return err
}

func notPending(r model.Reservation) error {
	var errs apperr.ValidationErrors
	errs.Add("status", "reservation %d is %s, only pending reservations can change", r.ID, r.Status)
	return errs.Err()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

