package sales

import (
	"context"
	"log/slog"
	"sync"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/model"
	"github.com/erazemk/dresi/internal/saga"
)

// SaleRepository persists sales.
type SaleRepository interface {
	Create(ctx context.Context, in model.SaleInput) (model.Sale, error)
	Update(ctx context.Context, id int64, patch model.SalePatch) (model.Sale, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Sale, error)
}

// SaleRecorder records sales and draws their items from product stock.
type SaleRecorder struct {
	repo     SaleRepository
	products StockAdjuster
	mode     saga.Mode
	now      clock

	write sync.Mutex
	sales journal[model.Sale]
	state apperr.State
}

// NewSaleRecorder returns a recorder. With saga.Compensate a failed product
// update rolls back the ones already applied and the sale is not saved;
// with saga.BestEffort the sale is saved and the failed items are reported.
func NewSaleRecorder(repo SaleRepository, products StockAdjuster, mode saga.Mode) *SaleRecorder {
	return &SaleRecorder{repo: repo, products: products, mode: mode}
}

// Record validates in against current stock, decrements each product once,
// then persists the sale. When some product updates fail in best-effort
// mode the saved sale is returned together with a *apperr.PartialError.
func (r *SaleRecorder) Record(ctx context.Context, in model.SaleInput) (model.Sale, error) {
	r.write.Lock()
	defer r.write.Unlock()

	errs := validateItems(r.products, in.Items, true)
	validateSaleType(&errs, in.SaleType, true)
	if err := errs.Err(); err != nil {
		return model.Sale{}, r.fail(err)
	}
	if in.Date.IsZero() {
		in.Date = r.now.now()
	}

	res := saga.Run(ctx, r.mode, stockSteps(r.products, in.Items, -1)...)
	if r.mode == saga.Compensate && !res.OK() {
		slog.Warn("sale aborted, stock changes rolled back",
			"failed", len(res.Failed), "compensation_failed", len(res.CompensationFailed))
		return model.Sale{}, r.fail(res.Err("recording sale"))
	}

	sale, err := r.repo.Create(ctx, in)
	if err != nil {
		res.Rollback(ctx)
		for _, f := range res.CompensationFailed {
			slog.Error("restoring stock after failed sale", "step", f.Step, "error", f.Err)
		}
		return model.Sale{}, r.fail(err)
	}
	r.sales.add(sale)

	if !res.OK() {
		for _, f := range res.Failed {
			slog.Warn("sale stock update failed", "sale", sale.ID, "step", f.Step, "error", f.Err)
		}
		return sale, r.fail(res.Err("recording sale"))
	}

	slog.Info("sale recorded", "sale", sale.ID, "items", len(sale.Items), "total", sale.Total().String())
	r.state.Clear()
	return sale, nil
}

// Update edits a sale's metadata or items. Stock is not touched.
func (r *SaleRecorder) Update(ctx context.Context, id int64, patch model.SalePatch) (model.Sale, error) {
	r.write.Lock()
	defer r.write.Unlock()

	var errs apperr.ValidationErrors
	if patch.Items != nil {
		errs = validateItems(r.products, patch.Items, false)
	}
	if patch.SaleType != nil {
		validateSaleType(&errs, *patch.SaleType, true)
	}
	if err := errs.Err(); err != nil {
		return model.Sale{}, r.fail(err)
	}

	sale, err := r.repo.Update(ctx, id, patch)
	if err != nil {
		return model.Sale{}, r.fail(err)
	}
	r.sales.replace(sale)
	r.state.Clear()
	return sale, nil
}

// Delete removes a sale record. Product stock is not restored.
func (r *SaleRecorder) Delete(ctx context.Context, id int64) error {
	r.write.Lock()
	defer r.write.Unlock()

	if err := r.repo.Delete(ctx, id); err != nil {
		return r.fail(err)
	}
	r.sales.remove(id)
	slog.Info("sale deleted", "sale", id)
	r.state.Clear()
	return nil
}

// Reload refetches every sale.
func (r *SaleRecorder) Reload(ctx context.Context) error {
	r.write.Lock()
	defer r.write.Unlock()

	list, err := r.repo.List(ctx)
	if err != nil {
		return r.fail(err)
	}
	r.sales.set(list)
	r.state.Clear()
	return nil
}

// List returns the loaded sales.
func (r *SaleRecorder) List() []model.Sale {
	return r.sales.list()
}

// Get returns a loaded sale.
func (r *SaleRecorder) Get(id int64) (model.Sale, bool) {
	return r.sales.get(id)
}

// Err returns the message of the last failed operation, or "".
func (r *SaleRecorder) Err() string {
	return r.state.Message()
}

// ClearError resets the error message.
func (r *SaleRecorder) ClearError() {
	r.state.Clear()
}

func (r *SaleRecorder) fail(err error) error {
	r.state.Set(err)
	return err
}
