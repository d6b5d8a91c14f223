package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/dresi/internal/model"
)

// Teams persists teams.
type Teams struct {
	DB *sql.DB
}

const teamColumns = `id, name, COALESCE(country, ''), status, created_at`

func scanTeam(s scanner, t *model.Team) error {
	return s.Scan(&t.ID, &t.Name, &t.Country, &t.Status, &t.CreatedAt)
}

// Create inserts a team. Team names are unique.
func (s *Teams) Create(ctx context.Context, in model.TeamInput) (model.Team, error) {
	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO teams (name, country) VALUES (?, ?)`, in.Name, in.Country)
	if err != nil {
		return model.Team{}, translate("creating team", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Team{}, translate("getting team id", err)
	}
	return s.Get(ctx, id)
}

// Get returns a team by ID.
func (s *Teams) Get(ctx context.Context, id int64) (model.Team, error) {
	var t model.Team
	err := scanTeam(s.DB.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = ?`, id), &t)
	if err != nil {
		return model.Team{}, translate("getting team", err)
	}
	return t, nil
}

// List returns active teams.
func (s *Teams) List(ctx context.Context) ([]model.Team, error) {
	return s.list(ctx, model.StatusActive)
}

// ListArchived returns archived teams.
func (s *Teams) ListArchived(ctx context.Context) ([]model.Team, error) {
	return s.list(ctx, model.StatusArchived)
}

func (s *Teams) list(ctx context.Context, status string) ([]model.Team, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE status = ? ORDER BY name`, status)
	if err != nil {
		return nil, translate("listing teams", err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := scanTeam(rows, &t); err != nil {
			return nil, translate("scanning team", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("listing teams", err)
	}
	return teams, nil
}

// Update applies a partial update.
func (s *Teams) Update(ctx context.Context, id int64, patch model.TeamPatch) (model.Team, error) {
	var sets []string
	var args []any
	if patch.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.Country != nil {
		sets, args = append(sets, "country = ?"), append(args, *patch.Country)
	}

	if err := updateColumns(ctx, s.DB, "teams", id, sets, args); err != nil {
		return model.Team{}, translate("updating team", err)
	}
	return s.Get(ctx, id)
}

// Archive marks a team archived.
func (s *Teams) Archive(ctx context.Context, id int64) (model.Team, error) {
	if err := setStatus(ctx, s.DB, "teams", id, model.StatusArchived); err != nil {
		return model.Team{}, translate("archiving team", err)
	}
	return s.Get(ctx, id)
}

// Restore marks a team active again.
func (s *Teams) Restore(ctx context.Context, id int64) (model.Team, error) {
	if err := setStatus(ctx, s.DB, "teams", id, model.StatusActive); err != nil {
		return model.Team{}, translate("restoring team", err)
	}
	return s.Get(ctx, id)
}

// Delete permanently removes a team.
func (s *Teams) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, s.DB, "teams", id); err != nil {
		return translate("deleting team", err)
	}
	return nil
}
