package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/medcal/scheduling/internal/appointment"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeServiceError maps the engine's typed errors to HTTP responses.
// Expected outcomes keep their message; anything internal is logged with
// the request id and surfaced opaquely.
func writeServiceError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var apptErr *appointment.Error
	if errors.As(err, &apptErr) {
		switch apptErr.Code {
		case appointment.CodeValidation:
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "validation_failed",
				Reason:  apptErr.Reason,
				Details: apptErr.Message,
			})
			return
		case appointment.CodeConflict:
			writeJSON(w, http.StatusConflict, ErrorResponse{
				Error:   "conflict",
				Reason:  apptErr.Reason,
				Details: apptErr.Message,
			})
			return
		case appointment.CodeNotFound:
			writeError(w, http.StatusNotFound, "not_found", apptErr.Message)
			return
		case appointment.CodeStoreUnavailable:
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", apptErr.Message)
			return
		}
	}

	log.Error().Err(err).
		Str("request_id", GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Msg("internal error")
	writeError(w, http.StatusInternalServerError, "internal_error", "unexpected failure")
}
