package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/dresi/internal/model"
)

// KitTypes persists kit types.
type KitTypes struct {
	DB *sql.DB
}

func scanKitType(s scanner, k *model.KitType) error {
	return s.Scan(&k.ID, &k.Name, &k.Status, &k.CreatedAt)
}

// Create inserts a kit type. Kit type names are unique.
func (s *KitTypes) Create(ctx context.Context, in model.KitTypeInput) (model.KitType, error) {
	result, err := s.DB.ExecContext(ctx, `INSERT INTO kit_types (name) VALUES (?)`, in.Name)
	if err != nil {
		return model.KitType{}, translate("creating kit type", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.KitType{}, translate("getting kit type id", err)
	}
	return s.Get(ctx, id)
}

// Get returns a kit type by ID.
func (s *KitTypes) Get(ctx context.Context, id int64) (model.KitType, error) {
	var k model.KitType
	err := scanKitType(s.DB.QueryRowContext(ctx,
		`SELECT id, name, status, created_at FROM kit_types WHERE id = ?`, id), &k)
	if err != nil {
		return model.KitType{}, translate("getting kit type", err)
	}
	return k, nil
}

// List returns active kit types.
func (s *KitTypes) List(ctx context.Context) ([]model.KitType, error) {
	return s.list(ctx, model.StatusActive)
}

// ListArchived returns archived kit types.
func (s *KitTypes) ListArchived(ctx context.Context) ([]model.KitType, error) {
	return s.list(ctx, model.StatusArchived)
}

func (s *KitTypes) list(ctx context.Context, status string) ([]model.KitType, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, status, created_at FROM kit_types WHERE status = ? ORDER BY name`, status)
	if err != nil {
		return nil, translate("listing kit types", err)
	}
	defer rows.Close()

	var kitTypes []model.KitType
	for rows.Next() {
		var k model.KitType
		if err := scanKitType(rows, &k); err != nil {
			return nil, translate("scanning kit type", err)
		}
		kitTypes = append(kitTypes, k)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("listing kit types", err)
	}
	return kitTypes, nil
}

// Update applies a partial update.
func (s *KitTypes) Update(ctx context.Context, id int64, patch model.KitTypePatch) (model.KitType, error) {
	var sets []string
	var args []any
	if patch.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}

	if err := updateColumns(ctx, s.DB, "kit_types", id, sets, args); err != nil {
		return model.KitType{}, translate("updating kit type", err)
	}
	return s.Get(ctx, id)
}

// Archive marks a kit type archived.
func (s *KitTypes) Archive(ctx context.Context, id int64) (model.KitType, error) {
	if err := setStatus(ctx, s.DB, "kit_types", id, model.StatusArchived); err != nil {
		return model.KitType{}, translate("archiving kit type", err)
	}
	return s.Get(ctx, id)
}

// Restore marks a kit type active again.
func (s *KitTypes) Restore(ctx context.Context, id int64) (model.KitType, error) {
	if err := setStatus(ctx, s.DB, "kit_types", id, model.StatusActive); err != nil {
		return model.KitType{}, translate("restoring kit type", err)
	}
	return s.Get(ctx, id)
}

// Delete permanently removes a kit type.
func (s *KitTypes) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, s.DB, "kit_types", id); err != nil {
		return translate("deleting kit type", err)
	}
	return nil
}
