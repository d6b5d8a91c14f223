package api

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/dresi/internal/catalog"
	"github.com/erazemk/dresi/internal/saga"
	"github.com/erazemk/dresi/internal/sales"
	"github.com/erazemk/dresi/internal/store"
)

// Services bundles the stores the HTTP surface drives.
type Services struct {
	DB *sql.DB

	Products  *catalog.ProductStore
	Namesets  *catalog.NamesetStore
	Badges    *catalog.BadgeStore
	Teams     *catalog.TeamStore
	KitTypes  *catalog.KitTypeStore
	Allocator *catalog.Allocator

	Sales        *sales.SaleRecorder
	Reservations *sales.ReservationManager
	Returns      *sales.ReturnRecorder
}

// NewServices wires every store over db. mode selects how sale stock
// cascades react to a failed product update.
func NewServices(db *sql.DB, mode saga.Mode) *Services {
	products := catalog.NewProductStore(&store.Products{DB: db})
	namesets := catalog.NewNamesetStore(&store.Namesets{DB: db})
	badges := catalog.NewBadgeStore(&store.Badges{DB: db})
	saleRepo := &store.Sales{DB: db}
	recorder := sales.NewSaleRecorder(saleRepo, products, mode)

	return &Services{
		DB:        db,
		Products:  products,
		Namesets:  namesets,
		Badges:    badges,
		Teams:     catalog.NewTeamStore(&store.Teams{DB: db}),
		KitTypes:  catalog.NewKitTypeStore(&store.KitTypes{DB: db}),
		Allocator: &catalog.Allocator{Products: products, Namesets: namesets, Badges: badges},

		Sales:        recorder,
		Reservations: sales.NewReservationManager(&store.Reservations{DB: db}, products, saleRepo, recorder),
		Returns:      sales.NewReturnRecorder(&store.Returns{DB: db}, products),
	}
}

// Load fills every collection from the database.
func (s *Services) Load(ctx context.Context) error {
	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{"kit types", s.KitTypes.Load},
		{"teams", s.Teams.Load},
		{"namesets", s.Namesets.Load},
		{"badges", s.Badges.Load},
		{"products", s.Products.Load},
		{"sales", s.Sales.Reload},
		{"reservations", s.Reservations.Reload},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			return fmt.Errorf("loading %s: %w", l.name, err)
		}
	}
	return nil
}
