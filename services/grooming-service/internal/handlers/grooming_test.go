package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smarterdog/grooming/services/grooming-service/internal/calendar"
	"github.com/smarterdog/grooming/services/grooming-service/internal/catalog"
	"github.com/smarterdog/grooming/services/grooming-service/internal/engine"
	"github.com/smarterdog/grooming/services/grooming-service/internal/ledger"
	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
	"github.com/smarterdog/grooming/services/grooming-service/internal/service"
)

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	eng := engine.New(
		calendar.NewResolver(calendar.Config{}),
		catalog.MustNew(catalog.DefaultConfig()),
		ledger.NewMemory(ledger.DefaultCeiling, ledger.DemoSeed()...),
		engine.Options{Logger: logger},
	)
	mux := http.NewServeMux()
	NewGroomingHandler(service.New(eng, logger), logger).Register(mux)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestSlotsEndpoint(t *testing.T) {
	mux := newMux(t)
	rr := do(t, mux, http.MethodGet, "/api/v1/slots?date=2024-07-17&dog_size=medium", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var avail model.Availability
	if err := json.Unmarshal(rr.Body.Bytes(), &avail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if avail.OperatingDate != "2024-07-17" || len(avail.AvailableSlots) != 10 {
		t.Fatalf("unexpected availability %+v", avail)
	}
}

func TestSlotsEndpointShutdown(t *testing.T) {
	rr := do(t, newMux(t), http.MethodGet, "/api/v1/slots?date=2024-12-25&dog_size=small", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"available_slots":[]`) || !strings.Contains(rr.Body.String(), "Christmas shutdown") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestSlotsEndpointInvalidInput(t *testing.T) {
	rr := do(t, newMux(t), http.MethodGet, "/api/v1/slots?date=tomorrow&dog_size=small", "")
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "InvalidInput") {
		t.Fatalf("expected 400 InvalidInput, got %d: %s", rr.Code, rr.Body.String())
	}
}

const lunaBody = `{"dog_name":"Luna","dog_size":"medium","requested_date":"2024-07-17","requested_time":"10:30","customer_name":"Sarah Chen","contact_number":"555-0123"}`

func TestCreateAndListBookings(t *testing.T) {
	mux := newMux(t)
	rr := do(t, mux, http.MethodPost, "/api/v1/bookings", lunaBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var rec model.BookingRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Status != model.StatusBooked || rec.Date != "2024-07-17" || rec.Time != "10:30" {
		t.Fatalf("unexpected record %+v", rec)
	}

	// The demo seed left one unit at 10:30; Luna took it.
	rr = do(t, mux, http.MethodPost, "/api/v1/bookings", lunaBody)
	if rr.Code != http.StatusConflict || !strings.Contains(rr.Body.String(), `"reason":"CapacityExceeded"`) {
		t.Fatalf("expected 409 CapacityExceeded, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, mux, http.MethodGet, "/api/v1/bookings?limit=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var list listBookingsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Bookings) != 1 || list.Bookings[0].ID != rec.ID {
		t.Fatalf("unexpected listing %+v", list)
	}
}

func TestCreateRejections(t *testing.T) {
	mux := newMux(t)
	cases := []struct {
		body   string
		status int
		reason model.Reason
	}{
		{strings.Replace(lunaBody, "10:30", "23:59", 1), http.StatusUnprocessableEntity, model.ReasonInvalidSlotTime},
		{strings.Replace(lunaBody, "2024-07-17", "2024-07-19", 1), http.StatusUnprocessableEntity, model.ReasonClosedDay},
		{strings.Replace(lunaBody, `"medium"`, `"huge"`, 1), http.StatusBadRequest, model.ReasonInvalidInput},
	}
	for _, tc := range cases {
		rr := do(t, mux, http.MethodPost, "/api/v1/bookings", tc.body)
		if rr.Code != tc.status {
			t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
		}
		var rec model.BookingRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if rec.Status != model.StatusFailed || rec.Reason != tc.reason || len(rec.Notes) == 0 {
			t.Fatalf("unexpected record %+v", rec)
		}
	}
}

func TestBadRequests(t *testing.T) {
	mux := newMux(t)
	if rr := do(t, mux, http.MethodPost, "/api/v1/bookings", "{"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rr.Code)
	}
	if rr := do(t, mux, http.MethodGet, "/api/v1/bookings?limit=-1", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rr.Code)
	}
	if rr := do(t, mux, http.MethodDelete, "/api/v1/bookings", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if rr := do(t, mux, http.MethodPost, "/api/v1/slots", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
