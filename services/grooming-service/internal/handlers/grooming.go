package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/smarterdog/grooming/libs/httpx"
	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
	"github.com/smarterdog/grooming/services/grooming-service/internal/service"
)

type GroomingHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewGroomingHandler(svc *service.Service, logger *slog.Logger) *GroomingHandler {
	return &GroomingHandler{svc: svc, logger: logger}
}

func (h *GroomingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/slots", h.Slots)
	mux.HandleFunc("/api/v1/bookings", h.Bookings)
}

type listBookingsResponse struct {
	Bookings []model.BookingRecord `json:"bookings"`
}

func (h *GroomingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	avail, err := h.svc.GetAvailableSlots(r.Context(), q.Get("date"), q.Get("dog_size"))
	if err != nil {
		h.writeFailure(w, r, err, nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, avail)
}

func (h *GroomingHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.Create(w, r)
	case http.MethodGet:
		h.List(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *GroomingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.BookingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	rec, err := h.svc.BookAppointment(r.Context(), in)
	if err != nil {
		h.writeFailure(w, r, err, &rec)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rec)
}

func (h *GroomingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	recs, err := h.svc.RecentBookings(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list bookings failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "db error")
		return
	}
	if recs == nil {
		recs = []model.BookingRecord{}
	}
	httpx.WriteJSON(w, http.StatusOK, listBookingsResponse{Bookings: recs})
}

// writeFailure answers a rejection with its record (when one exists) or a reason body.
func (h *GroomingHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error, rec *model.BookingRecord) {
	var rej *model.Rejection
	if !errors.As(err, &rej) {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	status := StatusFor(rej.Reason)
	if rec != nil {
		httpx.WriteJSON(w, status, rec)
		return
	}
	httpx.WriteJSON(w, status, map[string]any{
		"status": model.StatusFailed,
		"reason": rej.Reason,
		"notes":  []string{rej.Note},
	})
}

// StatusFor maps a rejection reason to its HTTP status.
func StatusFor(reason model.Reason) int {
	switch reason {
	case model.ReasonInvalidInput:
		return http.StatusBadRequest
	case model.ReasonClosedDay, model.ReasonInvalidSlotTime:
		return http.StatusUnprocessableEntity
	case model.ReasonCapacityExceeded:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
