package catalog

import (
	"context"
	"log/slog"

	"github.com/erazemk/dresi/internal/ledger"
	"github.com/erazemk/dresi/internal/model"
)

// ProductRepository persists products and applies stock deltas.
type ProductRepository interface {
	Repository[model.Product, model.ProductInput, model.ProductPatch]
	AdjustSizes(ctx context.Context, id int64, deltas ledger.SizeDeltas) (model.Product, error)
}

// ProductStore is the product collection.
type ProductStore struct {
	*Store[model.Product, model.ProductInput, model.ProductPatch]
	repo ProductRepository
}

// NewProductStore returns an empty product store.
func NewProductStore(repo ProductRepository) *ProductStore {
	return &ProductStore{
		Store: NewStore[model.Product, model.ProductInput, model.ProductPatch](repo, Validator[model.Product, model.ProductInput, model.ProductPatch]{
			Create: validateProductInput,
			Update: validateProductPatch,
		}),
		repo: repo,
	}
}

// AdjustStock applies per-size deltas to one product in a single repository
// call. A decrement larger than the stored quantity fails with a conflict
// and leaves the product unchanged.
func (s *ProductStore) AdjustStock(ctx context.Context, id int64, deltas ledger.SizeDeltas) (model.Product, error) {
	s.write.Lock()
	defer s.write.Unlock()

	local, known := s.Get(id)
	p, err := s.repo.AdjustSizes(ctx, id, deltas)
	if err != nil {
		return model.Product{}, s.fail(err)
	}

	if known {
		if drifted := stockDrift(local.Sizes, deltas, p.Sizes); len(drifted) > 0 {
			slog.Warn("product stock drifted", "product", id, "sizes", drifted)
		}
	}
	s.replace(p)
	s.state.Clear()
	return p, nil
}

// stockDrift lists the sizes whose stored quantity differs from local with
// deltas applied, meaning another writer changed the product.
func stockDrift(local []model.SizeQuantity, deltas ledger.SizeDeltas, stored []model.SizeQuantity) []string {
	want := make(map[string]int, len(local))
	for _, sq := range ledger.ApplyDeltas(local, deltas) {
		want[sq.Size] = sq.Quantity
	}
	var drifted []string
	for _, sq := range stored {
		if q, ok := want[sq.Size]; ok && q != sq.Quantity {
			drifted = append(drifted, sq.Size)
		}
	}
	return drifted
}

// Reload refetches every product from the repository.
func (s *ProductStore) Reload(ctx context.Context) error {
	return s.Load(ctx)
}
