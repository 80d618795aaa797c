package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medcal/scheduling/internal/appointment"
)

func TestParseWireTime(t *testing.T) {
	got, ok := parseWireTime("2099-03-02T10:30:00")
	if !ok {
		t.Fatal("documented layout rejected")
	}
	want := time.Date(2099, 3, 2, 10, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, ok := parseWireTime("2099-03-02T10:30:00Z"); !ok {
		t.Error("RFC 3339 rejected")
	}
	if _, ok := parseWireTime("02/03/2099 10:30"); ok {
		t.Error("garbage layout accepted")
	}
	if _, ok := parseWireTime(""); ok {
		t.Error("empty string accepted")
	}
}

func TestWriteServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        appointment.Validation(appointment.ReasonWeekend, "no weekends"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name:       "conflict",
			err:        appointment.Conflict("slot taken"),
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "not found",
			err:        appointment.NotFound("appointment"),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "store unavailable",
			err:        &appointment.Error{Code: appointment.CodeStoreUnavailable, Message: "store down"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "store_unavailable",
		},
		{
			name:       "internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/appointments", nil)

			writeServiceError(rec, req, zerolog.Nop(), tc.err)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tc.wantCode {
				t.Errorf("error code = %q, want %q", body.Error, tc.wantCode)
			}
		})
	}
}

func TestWriteServiceErrorCarriesReason(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/appointments", nil)

	writeServiceError(rec, req, zerolog.Nop(), appointment.Validation(appointment.ReasonDurationTooShort, "too short"))

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Reason != appointment.ReasonDurationTooShort {
		t.Errorf("reason = %q, want %q", body.Reason, appointment.ReasonDurationTooShort)
	}
	if body.Details != "too short" {
		t.Errorf("details = %q", body.Details)
	}
}
