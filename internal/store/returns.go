package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/dresi/internal/model"
)

// Returns persists return records.
type Returns struct {
	DB *sql.DB
}

const returnColumns = `id, COALESCE(customer_name, ''), date, sale_type, created_at`

func scanReturn(s scanner, r *model.Return) error {
	return s.Scan(&r.ID, &r.CustomerName, &r.Date, &r.SaleType, &r.CreatedAt)
}

// Create inserts a return and its items.
func (s *Returns) Create(ctx context.Context, in model.ReturnInput) (model.Return, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Return{}, translate("creating return", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO returns (customer_name, date, sale_type) VALUES (?, ?, ?)`,
		in.CustomerName, dbTime(in.Date), in.SaleType,
	)
	if err != nil {
		return model.Return{}, translate("creating return", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Return{}, translate("getting return id", err)
	}

	if err := insertItems(ctx, tx, "return_items", id, in.Items); err != nil {
		return model.Return{}, translate("creating return items", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Return{}, translate("committing return", err)
	}
	return s.Get(ctx, id)
}

// Get returns a return record with its items.
func (s *Returns) Get(ctx context.Context, id int64) (model.Return, error) {
	var r model.Return
	err := scanReturn(s.DB.QueryRowContext(ctx,
		`SELECT `+returnColumns+` FROM returns WHERE id = ?`, id), &r)
	if err != nil {
		return model.Return{}, translate("getting return", err)
	}

	items, err := loadItems(ctx, s.DB, "return_items", id)
	if err != nil {
		return model.Return{}, translate("getting return items", err)
	}
	r.Items = items[id]
	return r, nil
}

// List returns the returns matching filter, newest first. Start and End are
// inclusive bounds on the return date.
func (s *Returns) List(ctx context.Context, filter model.ReturnFilter) ([]model.Return, error) {
	var where []string
	var args []any
	if filter.Start != nil {
		where, args = append(where, "date >= ?"), append(args, dbTime(*filter.Start))
	}
	if filter.End != nil {
		where, args = append(where, "date <= ?"), append(args, dbTime(*filter.End))
	}
	if filter.SaleType != "" {
		where, args = append(where, "sale_type = ?"), append(args, filter.SaleType)
	}

	query := `SELECT ` + returnColumns + ` FROM returns`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("listing returns", err)
	}

	var returns []model.Return
	var ids []int64
	for rows.Next() {
		var r model.Return
		if err := scanReturn(rows, &r); err != nil {
			rows.Close()
			return nil, translate("scanning return", err)
		}
		returns = append(returns, r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, translate("listing returns", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return returns, nil
	}
	items, err := loadItems(ctx, s.DB, "return_items", ids...)
	if err != nil {
		return nil, translate("listing return items", err)
	}
	for i := range returns {
		returns[i].Items = items[returns[i].ID]
	}
	return returns, nil
}

// Delete removes a return record. A missing return is not an error.
func (s *Returns) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, s.DB, "returns", id); err != nil {
		return translate("deleting return", err)
	}
	return nil
}
