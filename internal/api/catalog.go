package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/dresi/internal/catalog"
	"github.com/erazemk/dresi/internal/imaging"
	"github.com/erazemk/dresi/internal/model"
)

// collection is the catalog store surface the handlers drive.
type collection[T catalog.Record, C, P any] interface {
	Create(ctx context.Context, in C) (T, error)
	Update(ctx context.Context, id int64, patch P) (T, error)
	Archive(ctx context.Context, id int64) (T, error)
	Restore(ctx context.Context, id int64) (T, error)
	Delete(ctx context.Context, id int64) error
	List() []T
	ListArchived() []T
	Get(id int64) (T, bool)
}

// CatalogHandler serves one catalog collection.
type CatalogHandler[T catalog.Record, C, P any] struct {
	Name  string
	Store collection[T, C, P]
}

// List handles GET /api/{collection}.
func (h *CatalogHandler[T, C, P]) List(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, emptyIfNil(h.Store.List()))
}

// ListArchived handles GET /api/{collection}/archived.
func (h *CatalogHandler[T, C, P]) ListArchived(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, emptyIfNil(h.Store.ListArchived()))
}

// Get handles GET /api/{collection}/{id}.
func (h *CatalogHandler[T, C, P]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, found := h.Store.Get(id)
	if !found {
		jsonError(w, http.StatusNotFound, h.Name+" not found")
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// Create handles POST /api/{collection}.
func (h *CatalogHandler[T, C, P]) Create(w http.ResponseWriter, r *http.Request) {
	var in C
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Store.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info(h.Name+" created", "user", GetClaims(r.Context()).Username)
	jsonResponse(w, http.StatusCreated, rec)
}

// Update handles PUT /api/{collection}/{id}.
func (h *CatalogHandler[T, C, P]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch P
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Store.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// Archive handles POST /api/{collection}/{id}/archive.
func (h *CatalogHandler[T, C, P]) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "archived", h.Store.Archive)
}

// Restore handles POST /api/{collection}/{id}/restore.
func (h *CatalogHandler[T, C, P]) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "restored", h.Store.Restore)
}

func (h *CatalogHandler[T, C, P]) transition(w http.ResponseWriter, r *http.Request, verb string, call func(context.Context, int64) (T, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := call(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rec.RecordID() == 0 {
		jsonError(w, http.StatusNotFound, h.Name+" not found")
		return
	}
	slog.Info(h.Name+" "+verb, "id", id, "user", GetClaims(r.Context()).Username)
	jsonResponse(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/{collection}/{id}.
func (h *CatalogHandler[T, C, P]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info(h.Name+" deleted", "id", id, "user", GetClaims(r.Context()).Username)
	w.WriteHeader(http.StatusNoContent)
}

type createProductRequest struct {
	model.ProductInput
	SkipInventoryDeduction bool `json:"skip_inventory_deduction"`
}

// ProductsHandler creates products through the allocator so linked
// namesets and badges are drawn from stock.
type ProductsHandler struct {
	Allocator *catalog.Allocator
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alloc, err := h.Allocator.CreateProduct(r.Context(), req.ProductInput, catalog.CreateOptions{
		SkipInventoryDeduction: req.SkipInventoryDeduction,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("product created", "product", alloc.Product.ID, "warnings", len(alloc.Warnings))
	jsonResponse(w, http.StatusCreated, alloc)
}

// imageCollection is a catalog store with a linked picture per record.
type imageCollection interface {
	SetImage(ctx context.Context, id int64, data []byte, mime string) error
	Image(ctx context.Context, id int64) ([]byte, string, error)
}

// ImageHandler uploads and serves nameset and badge pictures.
type ImageHandler struct {
	Store imageCollection
}

// Upload handles PUT /api/{collection}/{id}/image. The body is either the
// raw picture or a multipart form with an "image" file.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUpload+1<<20)
	body := r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(imaging.MaxUpload); err != nil {
			jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
			return
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			jsonError(w, http.StatusBadRequest, "image file required")
			return
		}
		defer file.Close()
		body = file
	}

	img, err := imaging.Process(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.SetImage(r.Context(), id, img.Data, img.MIME); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"width": img.Width, "height": img.Height, "mime": img.MIME})
}

// Get handles GET /api/{collection}/{id}/image.
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, mime, err := h.Store.Image(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
