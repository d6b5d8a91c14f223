package catalog

import (
	"context"
	"database/sql"
	"sort"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/model"
)

// fakeTeams is an in-memory team repository with failure injection.
type fakeTeams struct {
	next  int64
	rows  map[int64]model.Team
	calls int
	err   error
}

func newFakeTeams() *fakeTeams {
	return &fakeTeams{rows: make(map[int64]model.Team)}
}

func (f *fakeTeams) Create(_ context.Context, in model.TeamInput) (model.Team, error) {
	f.calls++
	if f.err != nil {
		return model.Team{}, f.err
	}
	for _, t := range f.rows {
		if t.Name == in.Name {
			return model.Team{}, apperr.Errorf(apperr.CodeUnique, "creating team", "duplicate %s", in.Name)
		}
	}
	f.next++
	t := model.Team{ID: f.next, Name: in.Name, Country: in.Country, Status: model.StatusActive}
	f.rows[t.ID] = t
	return t, nil
}

func (f *fakeTeams) Update(_ context.Context, id int64, p model.TeamPatch) (model.Team, error) {
	f.calls++
	if f.err != nil {
		return model.Team{}, f.err
	}
	t, ok := f.rows[id]
	if !ok {
		return model.Team{}, apperr.New(apperr.CodeNotFound, "updating team", sql.ErrNoRows)
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Country != nil {
		t.Country = *p.Country
	}
	f.rows[id] = t
	return t, nil
}

func (f *fakeTeams) setStatus(id int64, status string) (model.Team, error) {
	f.calls++
	if f.err != nil {
		return model.Team{}, f.err
	}
	t, ok := f.rows[id]
	if !ok {
		return model.Team{}, apperr.New(apperr.CodeNotFound, "setting team status", sql.ErrNoRows)
	}
	t.Status = status
	f.rows[id] = t
	return t, nil
}

func (f *fakeTeams) Archive(_ context.Context, id int64) (model.Team, error) {
	return f.setStatus(id, model.StatusArchived)
}

func (f *fakeTeams) Restore(_ context.Context, id int64) (model.Team, error) {
	return f.setStatus(id, model.StatusActive)
}

func (f *fakeTeams) Delete(_ context.Context, id int64) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeTeams) list(status string) ([]model.Team, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Team
	for _, t := range f.rows {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTeams) List(context.Context) ([]model.Team, error) {
	return f.list(model.StatusActive)
}

func (f *fakeTeams) ListArchived(context.Context) ([]model.Team, error) {
	return f.list(model.StatusArchived)
}
