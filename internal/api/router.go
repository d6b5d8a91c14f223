package api

import (
	"net/http"

	"github.com/erazemk/dresi/internal/auth"
	"github.com/erazemk/dresi/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(svc *Services, issuer *auth.Issuer) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: svc.DB, Issuer: issuer}
	usersHandler := &UsersHandler{DB: svc.DB}

	authMW := AuthMiddleware(issuer)
	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(RequireRole(model.RoleManager)(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(RequireRole(model.RoleAdmin)(h)) }

	// Public.
	mux.HandleFunc("GET /api/health", Health(svc.DB))
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))
	mux.Handle("POST /api/users", admin(usersHandler.Create))

	// Catalog: read (all roles), write (manager+).
	products := &CatalogHandler[model.Product, model.ProductInput, model.ProductPatch]{Name: "product", Store: svc.Products}
	mountCatalog(mux, "/api/products", products, read, write)
	mux.Handle("POST /api/products", write((&ProductsHandler{Allocator: svc.Allocator}).Create))

	namesets := &CatalogHandler[model.Nameset, model.NamesetInput, model.NamesetPatch]{Name: "nameset", Store: svc.Namesets}
	mountCatalog(mux, "/api/namesets", namesets, read, write)
	mux.Handle("POST /api/namesets", write(namesets.Create))
	mountImages(mux, "/api/namesets", &ImageHandler{Store: svc.Namesets}, read, write)

	badges := &CatalogHandler[model.Badge, model.BadgeInput, model.BadgePatch]{Name: "badge", Store: svc.Badges}
	mountCatalog(mux, "/api/badges", badges, read, write)
	mux.Handle("POST /api/badges", write(badges.Create))
	mountImages(mux, "/api/badges", &ImageHandler{Store: svc.Badges}, read, write)

	teams := &CatalogHandler[model.Team, model.TeamInput, model.TeamPatch]{Name: "team", Store: svc.Teams}
	mountCatalog(mux, "/api/teams", teams, read, write)
	mux.Handle("POST /api/teams", write(teams.Create))

	kitTypes := &CatalogHandler[model.KitType, model.KitTypeInput, model.KitTypePatch]{Name: "kit type", Store: svc.KitTypes}
	mountCatalog(mux, "/api/kit-types", kitTypes, read, write)
	mux.Handle("POST /api/kit-types", write(kitTypes.Create))

	// Sales, reservations and returns (all roles).
	salesHandler := &SalesHandler{Recorder: svc.Sales}
	mux.Handle("GET /api/sales", read(salesHandler.List))
	mux.Handle("POST /api/sales", read(salesHandler.Create))
	mux.Handle("GET /api/sales/{id}", read(salesHandler.Get))
	mux.Handle("PUT /api/sales/{id}", write(salesHandler.Update))
	mux.Handle("DELETE /api/sales/{id}", write(salesHandler.Delete))

	reservations := &ReservationsHandler{Manager: svc.Reservations}
	mux.Handle("GET /api/reservations", read(reservations.List))
	mux.Handle("GET /api/reservations/expired", read(reservations.ListExpired))
	mux.Handle("POST /api/reservations", read(reservations.Create))
	mux.Handle("GET /api/reservations/{id}", read(reservations.Get))
	mux.Handle("PUT /api/reservations/{id}", read(reservations.Update))
	mux.Handle("POST /api/reservations/{id}/complete", read(reservations.Complete))
	mux.Handle("DELETE /api/reservations/{id}", read(reservations.Delete))

	returns := &ReturnsHandler{Recorder: svc.Returns}
	mux.Handle("GET /api/returns", read(returns.List))
	mux.Handle("POST /api/returns", read(returns.Create))
	mux.Handle("DELETE /api/returns/{id}", write(returns.Delete))

	return LoggingMiddleware(mux)
}

type catalogRoutes interface {
	List(http.ResponseWriter, *http.Request)
	ListArchived(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Archive(http.ResponseWriter, *http.Request)
	Restore(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

// mountCatalog registers every catalog route except create, which differs
// for products.
func mountCatalog(mux *http.ServeMux, prefix string, h catalogRoutes, read, write func(http.HandlerFunc) http.Handler) {
	mux.Handle("GET "+prefix, read(h.List))
	mux.Handle("GET "+prefix+"/archived", read(h.ListArchived))
	mux.Handle("GET "+prefix+"/{id}", read(h.Get))
	mux.Handle("PUT "+prefix+"/{id}", write(h.Update))
	mux.Handle("POST "+prefix+"/{id}/archive", write(h.Archive))
	mux.Handle("POST "+prefix+"/{id}/restore", write(h.Restore))
	mux.Handle("DELETE "+prefix+"/{id}", write(h.Delete))
}

func mountImages(mux *http.ServeMux, prefix string, h *ImageHandler, read, write func(http.HandlerFunc) http.Handler) {
	mux.Handle("GET "+prefix+"/{id}/image", read(h.Get))
	mux.Handle("PUT "+prefix+"/{id}/image", write(h.Upload))
}
