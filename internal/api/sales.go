package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/model"
	"github.com/erazemk/dresi/internal/sales"
)

// partialResponse is returned with 207 when the primary record was saved
// but some stock updates failed.
type partialResponse struct {
	Record   any      `json:"record"`
	Warnings []string `json:"warnings"`
}

// writeSaved writes rec with status, or a 207 when err reports a partial
// stock failure. Any other error is written as is.
func writeSaved(w http.ResponseWriter, r *http.Request, status int, rec any, err error) {
	if err == nil {
		jsonResponse(w, status, rec)
		return
	}
	var partial *apperr.PartialError
	if !errors.As(err, &partial) {
		writeError(w, r, err)
		return
	}
	warnings := make([]string, 0, len(partial.Failed))
	for _, f := range partial.Failed {
		warnings = append(warnings, f.Step+": "+apperr.Message(f.Err))
	}
	jsonResponse(w, http.StatusMultiStatus, partialResponse{Record: rec, Warnings: warnings})
}

// SalesHandler serves the sale log.
type SalesHandler struct {
	Recorder *sales.SaleRecorder
}

// List handles GET /api/sales.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, emptyIfNil(h.Recorder.List()))
}

// Get handles GET /api/sales/{id}.
func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, found := h.Recorder.Get(id)
	if !found {
		jsonError(w, http.StatusNotFound, "sale not found")
		return
	}
	jsonResponse(w, http.StatusOK, sale)
}

// Create handles POST /api/sales.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.SaleInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.Recorder.Record(r.Context(), in)
	if sale.ID == 0 && err != nil {
		writeError(w, r, err)
		return
	}
	writeSaved(w, r, http.StatusCreated, sale, err)
}

// Update handles PUT /api/sales/{id}.
func (h *SalesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch model.SalePatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.Recorder.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, sale)
}

// Delete handles DELETE /api/sales/{id}.
func (h *SalesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Recorder.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReservationsHandler serves the reservation lifecycle.
type ReservationsHandler struct {
	Manager *sales.ReservationManager
	Now     func() time.Time
}

type completeResponse struct {
	Reservation model.Reservation `json:"reservation"`
	Sale        model.Sale        `json:"sale"`
}

// List handles GET /api/reservations.
func (h *ReservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, emptyIfNil(h.Manager.List()))
}

// ListExpired handles GET /api/reservations/expired.
func (h *ReservationsHandler) ListExpired(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(h.Manager.ListExpired(now())))
}

// Get handles GET /api/reservations/{id}.
func (h *ReservationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, found := h.Manager.Get(id)
	if !found {
		jsonError(w, http.StatusNotFound, "reservation not found")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Create handles POST /api/reservations.
func (h *ReservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ReservationInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Manager.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, res)
}

// Update handles PUT /api/reservations/{id}.
func (h *ReservationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in model.ReservationInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Manager.Edit(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Complete handles POST /api/reservations/{id}/complete. The body is optional.
func (h *ReservationsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var meta sales.CompleteInput
	if err := decodeOptionalJSON(r, &meta); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, sale, err := h.Manager.Complete(r.Context(), id, meta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("reservation completed via api", "reservation", id, "user", GetClaims(r.Context()).Username)
	jsonResponse(w, http.StatusOK, completeResponse{Reservation: res, Sale: sale})
}

// Delete handles DELETE /api/reservations/{id}.
func (h *ReservationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Manager.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReturnsHandler serves the return log.
type ReturnsHandler struct {
	Recorder *sales.ReturnRecorder
}

const dateLayout = "2006-01-02"

// List handles GET /api/returns?start=YYYY-MM-DD&end=YYYY-MM-DD&sale_type=X.
// The end date is inclusive.
func (h *ReturnsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ReturnFilter{SaleType: q.Get("sale_type")}

	if s := q.Get("start"); s != "" {
		start, err := time.Parse(dateLayout, s)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		filter.Start = &start
	}
	if s := q.Get("end"); s != "" {
		end, err := time.Parse(dateLayout, s)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		end = end.Add(24*time.Hour - time.Second)
		filter.End = &end
	}

	list, err := h.Recorder.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(list))
}

// Create handles POST /api/returns.
func (h *ReturnsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ReturnInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ret, err := h.Recorder.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, ret)
}

// Delete handles DELETE /api/returns/{id}.
func (h *ReturnsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Recorder.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
