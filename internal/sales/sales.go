// Package sales records stock-consuming sales, manages the reservation
// lifecycle and keeps the return log.
package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/ledger"
	"github.com/erazemk/dresi/internal/model"
	"github.com/erazemk/dresi/internal/saga"
)

// StockAdjuster is the product capability sales and reservations need.
type StockAdjuster interface {
	Get(id int64) (model.Product, bool)
	AdjustStock(ctx context.Context, id int64, deltas ledger.SizeDeltas) (model.Product, error)
	Reload(ctx context.Context) error
}

// Reloader refetches a collection from persistence.
type Reloader interface {
	Reload(ctx context.Context) error
}

type record interface {
	RecordID() int64
}

// journal is an id-keyed collection of historical records.
type journal[T record] struct {
	mu      sync.RWMutex
	records []T
}

func (j *journal[T]) set(records []T) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = records
}

func (j *journal[T]) add(r T) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, r)
}

func (j *journal[T]) replace(r T) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.records {
		if j.records[i].RecordID() == r.RecordID() {
			j.records[i] = r
			return
		}
	}
}

func (j *journal[T]) remove(id int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.records {
		if j.records[i].RecordID() == id {
			j.records = append(j.records[:i], j.records[i+1:]...)
			return
		}
	}
}

func (j *journal[T]) get(id int64) (T, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, r := range j.records {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

func (j *journal[T]) list() []T {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]T, len(j.records))
	copy(out, j.records)
	return out
}

// validateItems checks line items against the current product stock. The
// requested quantities are summed per product and size before comparing.
func validateItems(products StockAdjuster, items []model.LineItem, checkStock bool) apperr.ValidationErrors {
	var errs apperr.ValidationErrors
	if len(items) == 0 {
		errs.Add("items", "at least one item is required")
		return errs
	}

	type key struct {
		product int64
		size    string
	}
	requested := make(map[key]int)
	first := make(map[key]int)

	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		if it.Quantity <= 0 {
			errs.Add(field+".quantity", "must be greater than zero")
		}
		if !it.PriceSold.IsPositive() {
			errs.Add(field+".price_sold", "must be greater than zero")
		}

		p, ok := products.Get(it.ProductID)
		if !ok {
			errs.Add(field+".product_id", "product %d does not exist", it.ProductID)
			continue
		}
		if _, ok := p.SizeQuantity(it.Size); !ok {
			errs.Add(field+".size", "%s has no size %q", p.Name, it.Size)
			continue
		}

		k := key{it.ProductID, it.Size}
		if _, seen := first[k]; !seen {
			first[k] = i
		}
		if it.Quantity > 0 {
			requested[k] += it.Quantity
		}
	}

	if !checkStock {
		return errs
	}

	keys := make([]key, 0, len(requested))
	for k := range requested {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return first[keys[a]] < first[keys[b]] })

	for _, k := range keys {
		p, _ := products.Get(k.product)
		available, _ := p.SizeQuantity(k.size)
		if requested[k] > available {
			errs.Add(fmt.Sprintf("items[%d].quantity", first[k]),
				"not enough stock for %s size %s (available %d, requested %d)",
				p.Name, k.size, available, requested[k])
		}
	}
	return errs
}

func validateSaleType(errs *apperr.ValidationErrors, saleType string, required bool) {
	if saleType == "" {
		if required {
			errs.Add("sale_type", "is required")
		}
		return
	}
	if !model.ValidSaleType(saleType) {
		errs.Add("sale_type", "unknown sale type %q", saleType)
	}
}

// stockSteps builds one saga step per product that moves its stock by the
// summed item quantities. sign is -1 to consume and +1 to give back.
func stockSteps(products StockAdjuster, items []model.LineItem, sign int) []saga.Step {
	deltas := ledger.ProductDeltas(items, sign)
	steps := make([]saga.Step, 0, len(deltas))
	for _, id := range ledger.ProductIDs(deltas) {
		id, d := id, deltas[id]
		steps = append(steps, saga.Step{
			Name: stepName(id, d),
			Forward: func(ctx context.Context) error {
				_, err := products.AdjustStock(ctx, id, d)
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, err := products.AdjustStock(ctx, id, d.Negate())
				return err
			},
		})
	}
	return steps
}

// stepName lists the sizes a product step touches, for example
// "product 3 (L, M)".
func stepName(id int64, d ledger.SizeDeltas) string {
	sizes := make([]string, 0, len(d))
	for s := range d {
		sizes = append(sizes, s)
	}
	sort.Strings(sizes)
	return fmt.Sprintf("product %d (%s)", id, strings.Join(sizes, ", "))
}

// clock is overridable in tests.
type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
