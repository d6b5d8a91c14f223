package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/dresi/internal/model"
)

// Sales persists sale records.
type Sales struct {
	DB *sql.DB
}

const saleColumns = `id, COALESCE(customer_name, ''), date, sale_type, reservation_id, created_at`

func scanSale(s scanner, sale *model.Sale) error {
	return s.Scan(&sale.ID, &sale.CustomerName, &sale.Date, &sale.SaleType, &sale.ReservationID, &sale.CreatedAt)
}

// Create inserts a sale and its items in one transaction.
func (s *Sales) Create(ctx context.Context, in model.SaleInput) (model.Sale, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Sale{}, translate("creating sale", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO sales (customer_name, date, sale_type, reservation_id) VALUES (?, ?, ?, ?)`,
		in.CustomerName, dbTime(in.Date), in.SaleType, in.ReservationID,
	)
	if err != nil {
		return model.Sale{}, translate("creating sale", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Sale{}, translate("getting sale id", err)
	}

	if err := insertItems(ctx, tx, "sale_items", id, in.Items); err != nil {
		return model.Sale{}, translate("creating sale items", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Sale{}, translate("committing sale", err)
	}
	return s.Get(ctx, id)
}

// Get returns a sale with its items.
func (s *Sales) Get(ctx context.Context, id int64) (model.Sale, error) {
	var sale model.Sale
	err := scanSale(s.DB.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = ?`, id), &sale)
	if err != nil {
		return model.Sale{}, translate("getting sale", err)
	}

	items, err := loadItems(ctx, s.DB, "sale_items", id)
	if err != nil {
		return model.Sale{}, translate("getting sale items", err)
	}
	sale.Items = items[id]
	return sale, nil
}

// List returns all sales, newest first.
func (s *Sales) List(ctx context.Context) ([]model.Sale, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, translate("listing sales", err)
	}

	var sales []model.Sale
	for rows.Next() {
		var sale model.Sale
		if err := scanSale(rows, &sale); err != nil {
			rows.Close()
			return nil, translate("scanning sale", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, translate("listing sales", err)
	}
	rows.Close()

	items, err := loadItems(ctx, s.DB, "sale_items")
	if err != nil {
		return nil, translate("listing sale items", err)
	}
	for i := range sales {
		sales[i].Items = items[sales[i].ID]
	}
	return sales, nil
}

// Update edits sale metadata and, when patch.Items is set, replaces the items.
func (s *Sales) Update(ctx context.Context, id int64, patch model.SalePatch) (model.Sale, error) {
	var sets []string
	var args []any
	if patch.CustomerName != nil {
		sets, args = append(sets, "customer_name = ?"), append(args, *patch.CustomerName)
	}
	if patch.Date != nil {
		sets, args = append(sets, "date = ?"), append(args, dbTime(*patch.Date))
	}
	if patch.SaleType != nil {
		sets, args = append(sets, "sale_type = ?"), append(args, *patch.SaleType)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Sale{}, translate("updating sale", err)
	}
	defer tx.Rollback()

	if err := updateColumns(ctx, tx, "sales", id, sets, args); err != nil {
		return model.Sale{}, translate("updating sale", err)
	}
	if patch.Items != nil {
		if err := replaceItems(ctx, tx, "sale_items", id, patch.Items); err != nil {
			return model.Sale{}, translate("replacing sale items", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Sale{}, translate("committing sale update", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a sale and its items. A missing sale is not an error.
func (s *Sales) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, s.DB, "sales", id); err != nil {
		return translate("deleting sale", err)
	}
	return nil
}
