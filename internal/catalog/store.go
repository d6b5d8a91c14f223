// Package catalog holds the in-memory catalog collections (products,
// namesets, badges, teams and kit types) and keeps them in step with the
// persistence layer.
package catalog

import (
	"context"
	"sync"

	"github.com/erazemk/dresi/internal/apperr"
)

// Record is a catalog entity with an id and an active/archived status.
type Record interface {
	RecordID() int64
	Archived() bool
}

// Repository is the persistence port a Store drives. C is the create
// payload and P the partial update.
type Repository[T Record, C, P any] interface {
	Create(ctx context.Context, in C) (T, error)
	Update(ctx context.Context, id int64, patch P) (T, error)
	Archive(ctx context.Context, id int64) (T, error)
	Restore(ctx context.Context, id int64) (T, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]T, error)
	ListArchived(ctx context.Context) ([]T, error)
}

// Validator checks payloads before they reach the repository. current is
// the locally known record for an update, if any.
type Validator[T Record, C, P any] struct {
	Create func(in C) error
	Update func(current T, known bool, patch P) error
}

// Store is a single collection of records keyed by id. Whether a record is
// listed as active or archived follows its status. Mutations are serialized
// and only touch the collection after the repository call succeeds.
type Store[T Record, C, P any] struct {
	repo     Repository[T, C, P]
	validate Validator[T, C, P]

	write sync.Mutex

	mu      sync.RWMutex
	records []T
	index   map[int64]int

	state apperr.State
}

// NewStore returns an empty store over repo.
func NewStore[T Record, C, P any](repo Repository[T, C, P], validate Validator[T, C, P]) *Store[T, C, P] {
	return &Store[T, C, P]{
		repo:     repo,
		validate: validate,
		index:    make(map[int64]int),
	}
}

// Load replaces the collection with the active and archived records held by
// the repository.
func (s *Store[T, C, P]) Load(ctx context.Context) error {
	s.write.Lock()
	defer s.write.Unlock()

	active, err := s.repo.List(ctx)
	if err != nil {
		return s.fail(err)
	}
	archived, err := s.repo.ListArchived(ctx)
	if err != nil {
		return s.fail(err)
	}

	records := make([]T, 0, len(active)+len(archived))
	records = append(records, active...)
	records = append(records, archived...)

	index := make(map[int64]int, len(records))
	for i, r := range records {
		index[r.RecordID()] = i
	}

	s.mu.Lock()
	s.records = records
	s.index = index
	s.mu.Unlock()

	s.state.Clear()
	return nil
}

// Create persists in and adds the canonical record to the collection.
func (s *Store[T, C, P]) Create(ctx context.Context, in C) (T, error) {
	s.write.Lock()
	defer s.write.Unlock()

	var zero T
	if s.validate.Create != nil {
		if err := s.validate.Create(in); err != nil {
			return zero, s.fail(err)
		}
	}

	rec, err := s.repo.Create(ctx, in)
	if err != nil {
		return zero, s.fail(err)
	}

	s.upsert(rec)
	s.state.Clear()
	return rec, nil
}

// Update persists patch and replaces the record in place, keeping its
// active or archived placement.
func (s *Store[T, C, P]) Update(ctx context.Context, id int64, patch P) (T, error) {
	s.write.Lock()
	defer s.write.Unlock()

	var zero T
	if s.validate.Update != nil {
		current, known := s.Get(id)
		if err := s.validate.Update(current, known, patch); err != nil {
			return zero, s.fail(err)
		}
	}

	rec, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return zero, s.fail(err)
	}

	s.replace(rec)
	s.state.Clear()
	return rec, nil
}

// Archive moves a record to the archived listing once the repository has
// archived it. An id the collection does not hold is a no-op and returns
// the zero record without calling the repository.
func (s *Store[T, C, P]) Archive(ctx context.Context, id int64) (T, error) {
	return s.transition(ctx, id, s.repo.Archive)
}

// Restore moves an archived record back to the active listing. Like
// Archive, it ignores ids the collection does not hold.
func (s *Store[T, C, P]) Restore(ctx context.Context, id int64) (T, error) {
	return s.transition(ctx, id, s.repo.Restore)
}

func (s *Store[T, C, P]) transition(ctx context.Context, id int64, call func(context.Context, int64) (T, error)) (T, error) {
	s.write.Lock()
	defer s.write.Unlock()

	if _, ok := s.Get(id); !ok {
		var zero T
		return zero, nil
	}

	rec, err := call(ctx, id)
	if err != nil {
		var zero T
		return zero, s.fail(err)
	}

	s.replace(rec)
	s.state.Clear()
	return rec, nil
}

// Delete removes a record from the repository and then from the collection.
// Deleting an id the collection does not hold is not an error.
func (s *Store[T, C, P]) Delete(ctx context.Context, id int64) error {
	s.write.Lock()
	defer s.write.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(err)
	}

	s.remove(id)
	s.state.Clear()
	return nil
}

// List returns the active records in collection order.
func (s *Store[T, C, P]) List() []T {
	return s.filter(false)
}

// ListArchived returns the archived records in collection order.
func (s *Store[T, C, P]) ListArchived() []T {
	return s.filter(true)
}

func (s *Store[T, C, P]) filter(archived bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.records))
	for _, r := range s.records {
		if r.Archived() == archived {
			out = append(out, r)
		}
	}
	return out
}

// Get returns the record with id, active or archived.
func (s *Store[T, C, P]) Get(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.records[i], true
}

// Err returns the message of the last failed operation, or "".
func (s *Store[T, C, P]) Err() string {
	return s.state.Message()
}

// ClearError resets the error message.
func (s *Store[T, C, P]) ClearError() {
	s.state.Clear()
}

func (s *Store[T, C, P]) fail(err error) error {
	s.state.Set(err)
	return err
}

// upsert adds rec, or replaces it if the id is already held.
func (s *Store[T, C, P]) upsert(rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[rec.RecordID()]; ok {
		s.records[i] = rec
		return
	}
	s.index[rec.RecordID()] = len(s.records)
	s.records = append(s.records, rec)
}

// replace swaps in rec if the id is held and reports whether it was.
func (s *Store[T, C, P]) replace(rec T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[rec.RecordID()]
	if ok {
		s.records[i] = rec
	}
	return ok
}

func (s *Store[T, C, P]) remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.records); j++ {
		s.index[s.records[j].RecordID()] = j
	}
}
