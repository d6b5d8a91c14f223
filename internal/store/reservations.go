package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/erazemk/dresi/internal/model"
)

// Reservations persists reservation records.
type Reservations struct {
	DB *sql.DB
}

const reservationColumns = `id, customer_name, expiring_date, COALESCE(location, ''),
	date_time, COALESCE(sale_type, ''), status, created_at`

func scanReservation(s scanner, r *model.Reservation) error {
	return s.Scan(&r.ID, &r.CustomerName, &r.ExpiringDate, &r.Location,
		&r.DateTime, &r.SaleType, &r.Status, &r.CreatedAt)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dbTime(*t)
}

// Create inserts a pending reservation and its items.
func (s *Reservations) Create(ctx context.Context, in model.ReservationInput) (model.Reservation, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Reservation{}, translate("creating reservation", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (customer_name, expiring_date, location, date_time, sale_type, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.CustomerName, dbTime(in.ExpiringDate), in.Location, nullableTime(in.DateTime), in.SaleType, model.ReservationPending,
	)
	if err != nil {
		return model.Reservation{}, translate("creating reservation", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Reservation{}, translate("getting reservation id", err)
	}

	if err := insertItems(ctx, tx, "reservation_items", id, in.Items); err != nil {
		return model.Reservation{}, translate("creating reservation items", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Reservation{}, translate("committing reservation", err)
	}
	return s.Get(ctx, id)
}

// Get returns a reservation with its items.
func (s *Reservations) Get(ctx context.Context, id int64) (model.Reservation, error) {
	var r model.Reservation
	err := scanReservation(s.DB.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id), &r)
	if err != nil {
		return model.Reservation{}, translate("getting reservation", err)
	}

	items, err := loadItems(ctx, s.DB, "reservation_items", id)
	if err != nil {
		return model.Reservation{}, translate("getting reservation items", err)
	}
	r.Items = items[id]
	return r, nil
}

// List returns all reservations ordered by expiring date.
func (s *Reservations) List(ctx context.Context) ([]model.Reservation, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY expiring_date, id`)
	if err != nil {
		return nil, translate("listing reservations", err)
	}

	var reservations []model.Reservation
	for rows.Next() {
		var r model.Reservation
		if err := scanReservation(rows, &r); err != nil {
			rows.Close()
			return nil, translate("scanning reservation", err)
		}
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, translate("listing reservations", err)
	}
	rows.Close()

	items, err := loadItems(ctx, s.DB, "reservation_items")
	if err != nil {
		return nil, translate("listing reservation items", err)
	}
	for i := range reservations {
		reservations[i].Items = items[reservations[i].ID]
	}
	return reservations, nil
}

// Update replaces a reservation's metadata and items. The status is kept.
func (s *Reservations) Update(ctx context.Context, id int64, in model.ReservationInput) (model.Reservation, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Reservation{}, translate("updating reservation", err)
	}
	defer tx.Rollback()

	err = updateColumns(ctx, tx, "reservations", id,
		[]string{"customer_name = ?", "expiring_date = ?", "location = ?", "date_time = ?", "sale_type = ?"},
		[]any{in.CustomerName, dbTime(in.ExpiringDate), in.Location, nullableTime(in.DateTime), in.SaleType},
	)
	if err != nil {
		return model.Reservation{}, translate("updating reservation", err)
	}
	if err := replaceItems(ctx, tx, "reservation_items", id, in.Items); err != nil {
		return model.Reservation{}, translate("replacing reservation items", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Reservation{}, translate("committing reservation update", err)
	}
	return s.Get(ctx, id)
}

// SetStatus moves a reservation to status.
func (s *Reservations) SetStatus(ctx context.Context, id int64, status string) (model.Reservation, error) {
	err := updateColumns(ctx, s.DB, "reservations", id, []string{"status = ?"}, []any{status})
	if err != nil {
		return model.Reservation{}, translate("setting reservation status", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a reservation and its items. A missing reservation is not
// an error.
func (s *Reservations) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, s.DB, "reservations", id); err != nil {
		return translate("deleting reservation", err)
	}
	return nil
}
