package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/ledger"
	"github.com/erazemk/dresi/internal/model"
	"github.com/erazemk/dresi/internal/saga"
)

// CreateOptions tunes product creation.
type CreateOptions struct {
	// SkipInventoryDeduction leaves nameset and badge stock untouched.
	SkipInventoryDeduction bool
}

// Allocation is the outcome of creating a product. Warnings lists secondary
// stock adjustments that failed; the product itself was created.
type Allocation struct {
	Product  model.Product `json:"product"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Allocator creates products and draws the printed namesets and badges they
// consume from stock.
type Allocator struct {
	Products *ProductStore
	Namesets *NamesetStore
	Badges   *BadgeStore
}

// CreateProduct persists a product, then decrements the linked nameset and
// badge by the product's total size quantity, clamped at zero. The two
// decrements are independent; their failures are logged and returned as
// warnings, never as an error.
func (a *Allocator) CreateProduct(ctx context.Context, in model.ProductInput, opts CreateOptions) (Allocation, error) {
	total := ledger.Total(in.Sizes)

	p, err := a.Products.Create(ctx, in)
	if err != nil {
		return Allocation{}, err
	}

	alloc := Allocation{Product: p}
	if opts.SkipInventoryDeduction || total <= 0 {
		return alloc, nil
	}

	var steps []saga.Step
	if p.NamesetID != nil {
		steps = append(steps, a.namesetStep(*p.NamesetID, total))
	}
	if p.BadgeID != nil {
		steps = append(steps, a.badgeStep(*p.BadgeID, total))
	}
	if len(steps) == 0 {
		return alloc, nil
	}

	res := saga.Run(ctx, saga.BestEffort, steps...)
	for _, f := range res.Failed {
		slog.Warn("product stock cascade failed", "product", p.ID, "step", f.Step, "error", f.Err)
		alloc.Warnings = append(alloc.Warnings, fmt.Sprintf("%s: %s", f.Step, apperr.Message(f.Err)))
	}
	return alloc, nil
}

func (a *Allocator) namesetStep(id int64, total int) saga.Step {
	var before int
	return saga.Step{
		Name: fmt.Sprintf("nameset %d", id),
		Forward: func(ctx context.Context) error {
			n, ok := a.Namesets.Get(id)
			if !ok {
				return apperr.Errorf(apperr.CodeNotFound, "decrementing nameset", "nameset %d is not loaded", id)
			}
			before = n.Quantity
			q := ledger.Decrement(n.Quantity, total)
			_, err := a.Namesets.Update(ctx, id, model.NamesetPatch{Quantity: &q})
			return err
		},
		Compensate: func(ctx context.Context) error {
			_, err := a.Namesets.Update(ctx, id, model.NamesetPatch{Quantity: &before})
			return err
		},
	}
}

func (a *Allocator) badgeStep(id int64, total int) saga.Step {
	var before int
	return saga.Step{
		Name: fmt.Sprintf("badge %d", id),
		Forward: func(ctx context.Context) error {
			b, ok := a.Badges.Get(id)
			if !ok {
				return apperr.Errorf(apperr.CodeNotFound, "decrementing badge", "badge %d is not loaded", id)
			}
			before = b.Quantity
			q := ledger.Decrement(b.Quantity, total)
			_, err := a.Badges.Update(ctx, id, model.BadgePatch{Quantity: &q})
			return err
		},
		Compensate: func(ctx context.Context) error {
			_, err := a.Badges.Update(ctx, id, model.BadgePatch{Quantity: &before})
			return err
		},
	}
}
