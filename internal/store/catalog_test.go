package store

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/db"
	"github.com/erazemk/dresi/internal/model"
)

func TestNamesets_CRUD(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	namesets := &Namesets{DB: database}

	n, err := namesets.Create(ctx, model.NamesetInput{PlayerName: "Oblak", Number: 13, Season: "24/25", Quantity: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.Quantity != 4 || n.KitTypeID != nil {
		t.Errorf("unexpected nameset %+v", n)
	}

	qty := 1
	n, err = namesets.Update(ctx, n.ID, model.NamesetPatch{Quantity: &qty})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n.Quantity != 1 || n.PlayerName != "Oblak" {
		t.Errorf("expected only quantity changed, got %+v", n)
	}

	negative := -1
	if _, err := namesets.Update(ctx, n.ID, model.NamesetPatch{Quantity: &negative}); !errors.Is(err, apperr.ErrMalformed) {
		t.Errorf("expected malformed input for negative quantity, got %v", err)
	}

	if _, err := namesets.Archive(ctx, n.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	archived, _ := namesets.ListArchived(ctx)
	if len(archived) != 1 {
		t.Fatalf("expected 1 archived nameset, got %d", len(archived))
	}
}

func TestNamesets_Image(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	namesets := &Namesets{DB: database}

	n, _ := namesets.Create(ctx, model.NamesetInput{PlayerName: "Oblak", Number: 13})

	if _, _, err := namesets.GetImage(ctx, n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found before upload, got %v", err)
	}

	data := []byte{0xff, 0xd8, 0xff, 0x00}
	if err := namesets.SetImage(ctx, n.ID, data, "image/jpeg"); err != nil {
		t.Fatalf("SetImage: %v", err)
	}

	got, mime, err := namesets.GetImage(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if !bytes.Equal(got, data) || mime != "image/jpeg" {
		t.Errorf("unexpected image %v %q", got, mime)
	}

	n, _ = namesets.Get(ctx, n.ID)
	if n.ImageMime != "image/jpeg" {
		t.Errorf("expected image mime on record, got %q", n.ImageMime)
	}
}

func TestBadges_CRUD(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	badges := &Badges{DB: database}

	b, err := badges.Create(ctx, model.BadgeInput{Name: "Champions League", Quantity: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := badges.SetImage(ctx, b.ID, []byte("png"), "image/png"); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if err := badges.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ := badges.List(ctx)
	if len(list) != 0 {
		t.Errorf("expected no badges, got %d", len(list))
	}
}

func TestTeams_UniqueName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	teams := &Teams{DB: database}

	if _, err := teams.Create(ctx, model.TeamInput{Name: "Olimpija", Country: "Slovenia"}); err != nil {
		t.Fatal(err)
	}
	if _, err := teams.Create(ctx, model.TeamInput{Name: "Olimpija"}); !errors.Is(err, apperr.ErrUnique) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestKitTypes_DeleteReferenced(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kt := seedKitType(t, database, "Home")
	seedProduct(t, database, kt.ID)

	if err := (&KitTypes{DB: database}).Delete(ctx, kt.ID); !errors.Is(err, apperr.ErrForeignKey) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestKitTypes_UpdateNoChanges(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	kitTypes := &KitTypes{DB: database}
	kt := seedKitType(t, database, "Away")

	got, err := kitTypes.Update(ctx, kt.ID, model.KitTypePatch{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Away" {
		t.Errorf("expected unchanged name, got %q", got.Name)
	}
	if _, err := kitTypes.Update(ctx, 999, model.KitTypePatch{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
