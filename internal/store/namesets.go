package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/dresi/internal/model"
)

// Namesets persists namesets and their images.
type Namesets struct {
	DB *sql.DB
}

const namesetColumns = `id, player_name, number, COALESCE(season, ''), quantity,
	kit_type_id, COALESCE(image_mime, ''), status, created_at`

func scanNameset(s scanner, n *model.Nameset) error {
	return s.Scan(&n.ID, &n.PlayerName, &n.Number, &n.Season, &n.Quantity,
		&n.KitTypeID, &n.ImageMime, &n.Status, &n.CreatedAt)
}

// Create inserts a nameset.
func (s *Namesets) Create(ctx context.Context, in model.NamesetInput) (model.Nameset, error) {
	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO namesets (player_name, number, season, quantity, kit_type_id) VALUES (?, ?, ?, ?, ?)`,
		in.PlayerName, in.Number, in.Season, in.Quantity, in.KitTypeID,
	)
	if err != nil {
		return model.Nameset{}, translate("creating nameset", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Nameset{}, translate("getting nameset id", err)
	}
	return s.Get(ctx, id)
}

// Get returns a nameset by ID.
func (s *Namesets) Get(ctx context.Context, id int64) (model.Nameset, error) {
	var n model.Nameset
	err := scanNameset(s.DB.QueryRowContext(ctx,
		`SELECT `+namesetColumns+` FROM namesets WHERE id = ?`, id), &n)
	if err != nil {
		return model.Nameset{}, translate("getting nameset", err)
	}
	return n, nil
}

// List returns active namesets.
func (s *Namesets) List(ctx context.Context) ([]model.Nameset, error) {
	return s.list(ctx, model.StatusActive)
}

// ListArchived returns archived namesets.
func (s *Namesets) ListArchived(ctx context.Context) ([]model.Nameset, error) {
	return s.list(ctx, model.StatusArchived)
}

func (s *Namesets) list(ctx context.Context, status string) ([]model.Nameset, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+namesetColumns+` FROM namesets WHERE status = ? ORDER BY player_name, number`, status)
	if err != nil {
		return nil, translate("listing namesets", err)
	}
	defer rows.Close()

	var namesets []model.Nameset
	for rows.Next() {
		var n model.Nameset
		if err := scanNameset(rows, &n); err != nil {
			return nil, translate("scanning nameset", err)
		}
		namesets = append(namesets, n)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("listing namesets", err)
	}
	return namesets, nil
}

// Update applies a partial update.
func (s *Namesets) Update(ctx context.Context, id int64, patch model.NamesetPatch) (model.Nameset, error) {
	var sets []string
	var args []any
	if patch.PlayerName != nil {
		sets, args = append(sets, "player_name = ?"), append(args, *patch.PlayerName)
	}
	if patch.Number != nil {
		sets, args = append(sets, "number = ?"), append(args, *patch.Number)
	}
	if patch.Season != nil {
		sets, args = append(sets, "season = ?"), append(args, *patch.Season)
	}
	if patch.Quantity != nil {
		sets, args = append(sets, "quantity = ?"), append(args, *patch.Quantity)
	}
	if patch.KitTypeID != nil {
		sets, args = append(sets, "kit_type_id = ?"), append(args, *patch.KitTypeID)
	}

	if err := updateColumns(ctx, s.DB, "namesets", id, sets, args); err != nil {
		return model.Nameset{}, translate("updating nameset", err)
	}
	return s.Get(ctx, id)
}

// Archive marks a nameset archived.
func (s *Namesets) Archive(ctx context.Context, id int64) (model.Nameset, error) {
	if err := setStatus(ctx, s.DB, "namesets", id, model.StatusArchived); err != nil {
		return model.Nameset{}, translate("archiving nameset", err)
	}
	return s.Get(ctx, id)
}

// Restore marks a nameset active again.
func (s *Namesets) Restore(ctx context.Context, id int64) (model.Nameset, error) {
	if err := setStatus(ctx, s.DB, "namesets", id, model.StatusActive); err != nil {
		return model.Nameset{}, translate("restoring nameset", err)
	}
	return s.Get(ctx, id)
}

// Delete permanently removes a nameset.
func (s *Namesets) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, s.DB, "namesets", id); err != nil {
		return translate("deleting nameset", err)
	}
	return nil
}

// SetImage stores the image for a nameset.
func (s *Namesets) SetImage(ctx context.Context, id int64, data []byte, mime string) error {
	if err := setImage(ctx, s.DB, "namesets", id, data, mime); err != nil {
		return translate("setting nameset image", err)
	}
	return nil
}

// GetImage returns the image for a nameset.
func (s *Namesets) GetImage(ctx context.Context, id int64) ([]byte, string, error) {
	data, mime, err := getImage(ctx, s.DB, "namesets", id)
	if err != nil {
		return nil, "", translate("getting nameset image", err)
	}
	return data, mime, nil
}
