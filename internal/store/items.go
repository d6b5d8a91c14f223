package store

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/dresi/internal/model"
)

// itemTables maps a line item table to its parent key column.
var itemTables = map[string]string{
	"sale_items":        "sale_id",
	"reservation_items": "reservation_id",
	"return_items":      "return_id",
}

func insertItems(ctx context.Context, q queryer, table string, parentID int64, items []model.LineItem) error {
	parent, ok := itemTables[table]
	if !ok {
		return fmt.Errorf("unknown item table %q", table)
	}
	for i, it := range items {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO `+table+` (`+parent+`, position, product_id, size, quantity, price_sold)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			parentID, i, it.ProductID, it.Size, it.Quantity, it.PriceSold,
		); err != nil {
			return fmt.Errorf("inserting item %d: %w", i, err)
		}
	}
	return nil
}

func replaceItems(ctx context.Context, q queryer, table string, parentID int64, items []model.LineItem) error {
	parent, ok := itemTables[table]
	if !ok {
		return fmt.Errorf("unknown item table %q", table)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+parent+` = ?`, parentID); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}
	return insertItems(ctx, q, table, parentID, items)
}

// loadItems returns line items keyed by parent ID. With no ids it loads
// every row of the table.
func loadItems(ctx context.Context, q queryer, table string, ids ...int64) (map[int64][]model.LineItem, error) {
	parent, ok := itemTables[table]
	if !ok {
		return nil, fmt.Errorf("unknown item table %q", table)
	}

	query := `SELECT ` + parent + `, product_id, size, quantity, price_sold FROM ` + table
	var args []any
	if len(ids) > 0 {
		query += ` WHERE ` + parent + ` IN (` + placeholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += ` ORDER BY ` + parent + `, position`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]model.LineItem)
	for rows.Next() {
		var id int64
		var it model.LineItem
		if err := rows.Scan(&id, &it.ProductID, &it.Size, &it.Quantity, &it.PriceSold); err != nil {
			return nil, err
		}
		out[id] = append(out[id], it)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}

// dbTime normalizes a timestamp before it is written so that stored values
// compare lexically in date order.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
