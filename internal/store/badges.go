package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/model"
)

// Badges persists badges and their images.
type Badges struct {
	DB *sql.DB
}

const badgeColumns = `id, name, COALESCE(season, ''), quantity, COALESCE(image_mime, ''), status, created_at`

func scanBadge(s scanner, b *model.Badge) error {
	return s.Scan(&b.ID, &b.Name, &b.Season, &b.Quantity, &b.ImageMime, &b.Status, &b.CreatedAt)
}

// Create inserts a badge.
func (s *Badges) Create(ctx context.Context, in model.BadgeInput) (model.Badge, error) {
	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO badges (name, season, quantity) VALUES (?, ?, ?)`,
		in.Name, in.Season, in.Quantity,
	)
	if err != nil {
		return model.Badge{}, translate("creating badge", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Badge{}, translate("getting badge id", err)
	}
	return s.Get(ctx, id)
}

// Get returns a badge by ID.
func (s *Badges) Get(ctx context.Context, id int64) (model.Badge, error) {
	var b model.Badge
	err := scanBadge(s.DB.QueryRowContext(ctx,
		`SELECT `+badgeColumns+` FROM badges WHERE id = ?`, id), &b)
	if err != nil {
		return model.Badge{}, translate("getting badge", err)
	}
	return b, nil
}

// List returns active badges.
func (s *Badges) List(ctx context.Context) ([]model.Badge, error) {
	return s.list(ctx, model.StatusActive)
}

// ListArchived returns archived badges.
func (s *Badges) ListArchived(ctx context.Context) ([]model.Badge, error) {
	return s.list(ctx, model.StatusArchived)
}

func (s *Badges) list(ctx context.Context, status string) ([]model.Badge, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+badgeColumns+` FROM badges WHERE status = ? ORDER BY name`, status)
	if err != nil {
		return nil, translate("listing badges", err)
	}
	defer rows.Close()

	var badges []model.Badge
	for rows.Next() {
		var b model.Badge
		if err := scanBadge(rows, &b); err != nil {
			return nil, translate("scanning badge", err)
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("listing badges", err)
	}
	return badges, nil
}

// Update applies a partial update.
func (s *Badges) Update(ctx context.Context, id int64, patch model.BadgePatch) (model.Badge, error) {
	var sets []string
	var args []any
	if patch.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.Season != nil {
		sets, args = append(sets, "season = ?"), append(args, *patch.Season)
	}
	if patch.Quantity != nil {
		sets, args = append(sets, "quantity = ?"), append(args, *patch.Quantity)
	}

	if err := updateColumns(ctx, s.DB, "badges", id, sets, args); err != nil {
		return model.Badge{}, translate("updating badge", err)
	}
	return s.Get(ctx, id)
}

// Archive marks a badge archived.
func (s *Badges) Archive(ctx context.Context, id int64) (model.Badge, error) {
	if err := setStatus(ctx, s.DB, "badges", id, model.StatusArchived); err != nil {
		return model.Badge{}, translate("archiving badge", err)
	}
	return s.Get(ctx, id)
}

// Restore marks a badge active again.
func (s *Badges) Restore(ctx context.Context, id int64) (model.Badge, error) {
	if err := setStatus(ctx, s.DB, "badges", id, model.StatusActive); err != nil {
		return model.Badge{}, translate("restoring badge", err)
	}
	return s.Get(ctx, id)
}

// Delete permanently removes a badge.
func (s *Badges) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, s.DB, "badges", id); err != nil {
		return translate("deleting badge", err)
	}
	return nil
}

// SetImage stores the image for a badge.
func (s *Badges) SetImage(ctx context.Context, id int64, data []byte, mime string) error {
	if err := setImage(ctx, s.DB, "badges", id, data, mime); err != nil {
		return translate("setting badge image", err)
	}
	return nil
}

// GetImage returns the image for a badge.
func (s *Badges) GetImage(ctx context.Context, id int64) ([]byte, string, error) {
	data, mime, err := getImage(ctx, s.DB, "badges", id)
	if err != nil {
		return nil, "", translate("getting badge image", err)
	}
	return data, mime, nil
}

// setImage stores an image blob on a nameset or badge row.
func setImage(ctx context.Context, q queryer, table string, id int64, data []byte, mime string) error {
	if table != "namesets" && table != "badges" {
		return apperr.Errorf(apperr.CodeInternal, "set image", "table %q has no image", table)
	}
	return updateColumns(ctx, q, table, id,
		[]string{"image = ?", "image_mime = ?"}, []any{data, mime})
}

// getImage loads an image blob. A row without an image is not found.
func getImage(ctx context.Context, q queryer, table string, id int64) ([]byte, string, error) {
	if table != "namesets" && table != "badges" {
		return nil, "", apperr.Errorf(apperr.CodeInternal, "get image", "table %q has no image", table)
	}
	var data []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT image, image_mime FROM `+table+` WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", sql.ErrNoRows
	}
	return data, mime.String, nil
}
