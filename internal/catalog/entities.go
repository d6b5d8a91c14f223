package catalog

import (
	"context"

	"github.com/erazemk/dresi/internal/model"
)

// NamesetRepository persists namesets and their images.
type NamesetRepository interface {
	Repository[model.Nameset, model.NamesetInput, model.NamesetPatch]
	Get(ctx context.Context, id int64) (model.Nameset, error)
	SetImage(ctx context.Context, id int64, data []byte, mime string) error
	GetImage(ctx context.Context, id int64) ([]byte, string, error)
}

// BadgeRepository persists badges and their images.
type BadgeRepository interface {
	Repository[model.Badge, model.BadgeInput, model.BadgePatch]
	Get(ctx context.Context, id int64) (model.Badge, error)
	SetImage(ctx context.Context, id int64, data []byte, mime string) error
	GetImage(ctx context.Context, id int64) ([]byte, string, error)
}

// NamesetStore is the nameset collection.
type NamesetStore struct {
	*imageStore[model.Nameset, model.NamesetInput, model.NamesetPatch]
}

// NewNamesetStore returns an empty nameset store.
func NewNamesetStore(repo NamesetRepository) *NamesetStore {
	s := NewStore[model.Nameset, model.NamesetInput, model.NamesetPatch](repo, Validator[model.Nameset, model.NamesetInput, model.NamesetPatch]{
		Create: validateNamesetInput,
		Update: validateNamesetPatch,
	})
	return &NamesetStore{&imageStore[model.Nameset, model.NamesetInput, model.NamesetPatch]{Store: s, images: repo}}
}

// BadgeStore is the badge collection.
type BadgeStore struct {
	*imageStore[model.Badge, model.BadgeInput, model.BadgePatch]
}

// NewBadgeStore returns an empty badge store.
func NewBadgeStore(repo BadgeRepository) *BadgeStore {
	s := NewStore[model.Badge, model.BadgeInput, model.BadgePatch](repo, Validator[model.Badge, model.BadgeInput, model.BadgePatch]{
		Create: validateBadgeInput,
		Update: validateBadgePatch,
	})
	return &BadgeStore{&imageStore[model.Badge, model.BadgeInput, model.BadgePatch]{Store: s, images: repo}}
}

// TeamStore is the team collection.
type TeamStore = Store[model.Team, model.TeamInput, model.TeamPatch]

// NewTeamStore returns an empty team store.
func NewTeamStore(repo Repository[model.Team, model.TeamInput, model.TeamPatch]) *TeamStore {
	name := requireName("name")
	return NewStore[model.Team, model.TeamInput, model.TeamPatch](repo, Validator[model.Team, model.TeamInput, model.TeamPatch]{
		Create: func(in model.TeamInput) error { return name(in.Name) },
		Update: func(_ model.Team, _ bool, p model.TeamPatch) error {
			if p.Name == nil {
				return nil
			}
			return name(*p.Name)
		},
	})
}

// KitTypeStore is the kit type collection.
type KitTypeStore = Store[model.KitType, model.KitTypeInput, model.KitTypePatch]

// NewKitTypeStore returns an empty kit type store.
func NewKitTypeStore(repo Repository[model.KitType, model.KitTypeInput, model.KitTypePatch]) *KitTypeStore {
	name := requireName("name")
	return NewStore[model.KitType, model.KitTypeInput, model.KitTypePatch](repo, Validator[model.KitType, model.KitTypeInput, model.KitTypePatch]{
		Create: func(in model.KitTypeInput) error { return name(in.Name) },
		Update: func(_ model.KitType, _ bool, p model.KitTypePatch) error {
			if p.Name == nil {
				return nil
			}
			return name(*p.Name)
		},
	})
}

type imageRepository[T any] interface {
	Get(ctx context.Context, id int64) (T, error)
	SetImage(ctx context.Context, id int64, data []byte, mime string) error
	GetImage(ctx context.Context, id int64) ([]byte, string, error)
}

// imageStore adds linked image handling to a catalog store.
type imageStore[T Record, C, P any] struct {
	*Store[T, C, P]
	images imageRepository[T]
}

// SetImage stores an encoded image for id and refreshes the local record so
// it reports the new mime type.
func (s *imageStore[T, C, P]) SetImage(ctx context.Context, id int64, data []byte, mime string) error {
	s.write.Lock()
	defer s.write.Unlock()

	if err := s.images.SetImage(ctx, id, data, mime); err != nil {
		return s.fail(err)
	}
	rec, err := s.images.Get(ctx, id)
	if err != nil {
		return s.fail(err)
	}
	s.replace(rec)
	s.state.Clear()
	return nil
}

// Image returns the stored image for id.
func (s *imageStore[T, C, P]) Image(ctx context.Context, id int64) ([]byte, string, error) {
	return s.images.GetImage(ctx, id)
}
