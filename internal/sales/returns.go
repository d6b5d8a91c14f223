package sales

import (
	"context"
	"log/slog"
	"sync"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/model"
)

// ReturnRepository persists returns and filters them.
type ReturnRepository interface {
	Create(ctx context.Context, in model.ReturnInput) (model.Return, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter model.ReturnFilter) ([]model.Return, error)
}

// ReturnRecorder keeps the return log. Returns never move stock.
type ReturnRecorder struct {
	repo     ReturnRepository
	products StockAdjuster
	now      clock

	write   sync.Mutex
	returns journal[model.Return]
	state   apperr.State
}

// NewReturnRecorder returns a recorder. products is only read, to check
// that returned items name a known product and size.
func NewReturnRecorder(repo ReturnRepository, products StockAdjuster) *ReturnRecorder {
	return &ReturnRecorder{repo: repo, products: products}
}

// Create records a return.
func (r *ReturnRecorder) Create(ctx context.Context, in model.ReturnInput) (model.Return, error) {
	r.write.Lock()
	defer r.write.Unlock()

	errs := validateItems(r.products, in.Items, false)
	validateSaleType(&errs, in.SaleType, true)
	if err := errs.Err(); err != nil {
		return model.Return{}, r.fail(err)
	}
	if in.Date.IsZero() {
		in.Date = r.now.now()
	}

	ret, err := r.repo.Create(ctx, in)
	if err != nil {
		return model.Return{}, r.fail(err)
	}
	r.returns.add(ret)

	slog.Info("return recorded", "return", ret.ID, "items", len(ret.Items))
	r.state.Clear()
	return ret, nil
}

// Delete removes a return record.
func (r *ReturnRecorder) Delete(ctx context.Context, id int64) error {
	r.write.Lock()
	defer r.write.Unlock()

	if err := r.repo.Delete(ctx, id); err != nil {
		return r.fail(err)
	}
	r.returns.remove(id)
	r.state.Clear()
	return nil
}

// List fetches the returns matching filter from persistence and keeps them
// as the current listing.
func (r *ReturnRecorder) List(ctx context.Context, filter model.ReturnFilter) ([]model.Return, error) {
	r.write.Lock()
	defer r.write.Unlock()

	if filter.SaleType != "" && !model.ValidSaleType(filter.SaleType) {
		var errs apperr.ValidationErrors
		errs.Add("sale_type", "unknown sale type %q", filter.SaleType)
		return nil, r.fail(errs.Err())
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		var errs apperr.ValidationErrors
		errs.Add("end", "must not be before start")
		return nil, r.fail(errs.Err())
	}

	list, err := r.repo.List(ctx, filter)
	if err != nil {
		return nil, r.fail(err)
	}
	r.returns.set(list)
	r.state.Clear()
	return list, nil
}

// Current returns the last fetched listing.
func (r *ReturnRecorder) Current() []model.Return {
	return r.returns.list()
}

// Err returns the message of the last failed operation, or "".
func (r *ReturnRecorder) Err() string {
	return r.state.Message()
}

// ClearError resets the error message.
func (r *ReturnRecorder) ClearError() {
	r.state.Clear()
}

func (r *ReturnRecorder) fail(err error) error {
	r.state.Set(err)
	return err
}
