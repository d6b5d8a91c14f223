package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/ledger"
	"github.com/erazemk/dresi/internal/model"
)

// Products persists products and their per-size stock.
type Products struct {
	DB *sql.DB
}

const productColumns = `id, name, type, price, sale_price, is_on_sale,
	nameset_id, team_id, kit_type_id, badge_id, status, created_at`

func scanProduct(s scanner, p *model.Product) error {
	return s.Scan(&p.ID, &p.Name, &p.Type, &p.Price, &p.SalePrice, &p.IsOnSale,
		&p.NamesetID, &p.TeamID, &p.KitTypeID, &p.BadgeID, &p.Status, &p.CreatedAt)
}

// Create inserts a product and its sizes in one transaction.
func (s *Products) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, translate("creating product", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO products (name, type, price, sale_price, is_on_sale, nameset_id, team_id, kit_type_id, badge_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Type, in.Price, in.SalePrice, in.IsOnSale, in.NamesetID, in.TeamID, in.KitTypeID, in.BadgeID,
	)
	if err != nil {
		return model.Product{}, translate("creating product", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Product{}, translate("getting product id", err)
	}

	if err := insertSizes(ctx, tx, id, in.Sizes); err != nil {
		return model.Product{}, translate("creating product sizes", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Product{}, translate("committing product", err)
	}

	return s.Get(ctx, id)
}

// Get returns a product by ID regardless of its status.
func (s *Products) Get(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := scanProduct(s.DB.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id,
	), &p)
	if err != nil {
		return model.Product{}, translate("getting product", err)
	}

	sizes, err := loadSizes(ctx, s.DB, `WHERE ps.product_id = ?`, id)
	if err != nil {
		return model.Product{}, translate("getting product sizes", err)
	}
	p.Sizes = sizes[id]
	return p, nil
}

// List returns all active products.
func (s *Products) List(ctx context.Context) ([]model.Product, error) {
	return s.list(ctx, model.StatusActive)
}

// ListArchived returns all archived products.
func (s *Products) ListArchived(ctx context.Context) ([]model.Product, error) {
	return s.list(ctx, model.StatusArchived)
}

func (s *Products) list(ctx context.Context, status string) ([]model.Product, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE status = ? ORDER BY id`, status,
	)
	if err != nil {
		return nil, translate("listing products", err)
	}

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			rows.Close()
			return nil, translate("scanning product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, translate("listing products", err)
	}
	rows.Close()

	sizes, err := loadSizes(ctx, s.DB,
		`JOIN products p ON p.id = ps.product_id WHERE p.status = ?`, status)
	if err != nil {
		return nil, translate("listing product sizes", err)
	}
	for i := range products {
		products[i].Sizes = sizes[products[i].ID]
	}
	return products, nil
}

// Update applies a partial update. When patch.Sizes is set the size list is
// replaced as a whole.
func (s *Products) Update(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	var sets []string
	var args []any
	if patch.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.Type != nil {
		sets, args = append(sets, "type = ?"), append(args, *patch.Type)
	}
	if patch.Price != nil {
		sets, args = append(sets, "price = ?"), append(args, *patch.Price)
	}
	if patch.SalePrice != nil {
		sets, args = append(sets, "sale_price = ?"), append(args, *patch.SalePrice)
	}
	if patch.IsOnSale != nil {
		sets, args = append(sets, "is_on_sale = ?"), append(args, *patch.IsOnSale)
	}
	if patch.NamesetID != nil {
		sets, args = append(sets, "nameset_id = ?"), append(args, *patch.NamesetID)
	}
	if patch.TeamID != nil {
		sets, args = append(sets, "team_id = ?"), append(args, *patch.TeamID)
	}
	if patch.KitTypeID != nil {
		sets, args = append(sets, "kit_type_id = ?"), append(args, *patch.KitTypeID)
	}
	if patch.BadgeID != nil {
		sets, args = append(sets, "badge_id = ?"), append(args, *patch.BadgeID)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, translate("updating product", err)
	}
	defer tx.Rollback()

	if err := updateColumns(ctx, tx, "products", id, sets, args); err != nil {
		return model.Product{}, translate("updating product", err)
	}

	if patch.Sizes != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_sizes WHERE product_id = ?`, id); err != nil {
			return model.Product{}, translate("replacing product sizes", err)
		}
		if err := insertSizes(ctx, tx, id, patch.Sizes); err != nil {
			return model.Product{}, translate("replacing product sizes", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Product{}, translate("committing product update", err)
	}

	return s.Get(ctx, id)
}

// Archive marks a product archived.
func (s *Products) Archive(ctx context.Context, id int64) (model.Product, error) {
	if err := setStatus(ctx, s.DB, "products", id, model.StatusArchived); err != nil {
		return model.Product{}, translate("archiving product", err)
	}
	return s.Get(ctx, id)
}

// Restore marks a product active again.
func (s *Products) Restore(ctx context.Context, id int64) (model.Product, error) {
	if err := setStatus(ctx, s.DB, "products", id, model.StatusActive); err != nil {
		return model.Product{}, translate("restoring product", err)
	}
	return s.Get(ctx, id)
}

// Delete permanently removes a product. Products referenced by sales,
// reservations or returns fail with a foreign key violation.
func (s *Products) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, s.DB, "products", id); err != nil {
		return translate("deleting product", err)
	}
	return nil
}

// AdjustSizes applies per-size deltas in a single transaction. Decrements
// only succeed while the stored quantity covers them, so concurrent sales
// cannot drive a size negative; a shortfall fails with a conflict and
// nothing is applied.
func (s *Products) AdjustSizes(ctx context.Context, id int64, deltas ledger.SizeDeltas) (model.Product, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, translate("adjusting stock", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ?`, id).Scan(&exists); err != nil {
		return model.Product{}, translate("adjusting stock", err)
	}

	sizes := make([]string, 0, len(deltas))
	for size := range deltas {
		sizes = append(sizes, size)
	}
	sort.Strings(sizes)

	for _, size := range sizes {
		d := deltas[size]
		if d == 0 {
			continue
		}

		var result sql.Result
		if d < 0 {
			result, err = tx.ExecContext(ctx,
				`UPDATE product_sizes SET quantity = quantity - ?
				 WHERE product_id = ? AND size = ? AND quantity >= ?`,
				-d, id, size, -d,
			)
		} else {
			result, err = tx.ExecContext(ctx,
				`UPDATE product_sizes SET quantity = quantity + ? WHERE product_id = ? AND size = ?`,
				d, id, size,
			)
		}
		if err != nil {
			return model.Product{}, translate("adjusting stock", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return model.Product{}, translate("adjusting stock", err)
		}
		if n == 0 {
			return model.Product{}, sizeShortfall(ctx, tx, id, size, -d)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Product{}, translate("committing stock adjustment", err)
	}

	return s.Get(ctx, id)
}

// sizeShortfall explains why a conditional size update matched no row.
func sizeShortfall(ctx context.Context, tx *sql.Tx, productID int64, size string, need int) error {
	var have int
	err := tx.QueryRowContext(ctx,
		`SELECT quantity FROM product_sizes WHERE product_id = ? AND size = ?`, productID, size,
	).Scan(&have)
	if err == sql.ErrNoRows {
		return apperr.Errorf(apperr.CodeNotFound, "adjusting stock", "product %d has no size %s", productID, size)
	}
	if err != nil {
		return translate("adjusting stock", err)
	}
	return apperr.Errorf(apperr.CodeConflict, "adjusting stock",
		"product %d size %s: have %d, need %d", productID, size, have, need)
}

func insertSizes(ctx context.Context, tx *sql.Tx, productID int64, sizes []model.SizeQuantity) error {
	for i, sz := range sizes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_sizes (product_id, position, size, quantity) VALUES (?, ?, ?, ?)`,
			productID, i, sz.Size, sz.Quantity,
		); err != nil {
			return fmt.Errorf("inserting size %s: %w", sz.Size, err)
		}
	}
	return nil
}

// loadSizes returns sizes keyed by product ID. clause is appended after the
// FROM product_sizes ps.
func loadSizes(ctx context.Context, q queryer, clause string, args ...any) (map[int64][]model.SizeQuantity, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT ps.product_id, ps.size, ps.quantity FROM product_sizes ps `+clause+
			` ORDER BY ps.product_id, ps.position`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]model.SizeQuantity)
	for rows.Next() {
		var id int64
		var sz model.SizeQuantity
		if err := rows.Scan(&id, &sz.Size, &sz.Quantity); err != nil {
			return nil, err
		}
		out[id] = append(out[id], sz)
	}
	return out, rows.Err()
}
