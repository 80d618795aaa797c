package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medcal/scheduling/internal/appointment"
)

// parseWireTime accepts the ISO-8601 local layout the API documents and,
// for convenience, full RFC 3339.
func parseWireTime(s string) (time.Time, bool) {
	if t, err := time.ParseInLocation(wireTime, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func decodeCandidate(w http.ResponseWriter, r *http.Request) (appointment.Candidate, bool) {
	var req AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return appointment.Candidate{}, false
	}

	var c appointment.Candidate
	var err error

	if c.DoctorID, err = uuid.Parse(req.DoctorID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
		return c, false
	}
	if c.PatientID, err = uuid.Parse(req.PatientID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
		return c, false
	}
	if req.CreatedBy != "" {
		if c.CreatedBy, err = uuid.Parse(req.CreatedBy); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_created_by", "created_by must be a valid UUID")
			return c, false
		}
	}

	var ok bool
	if c.StartTime, ok = parseWireTime(req.StartTime); !ok {
		writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be an ISO-8601 date-time")
		return c, false
	}
	if c.EndTime, ok = parseWireTime(req.EndTime); !ok {
		writeError(w, http.StatusBadRequest, "invalid_end_time", "end_time must be an ISO-8601 date-time")
		return c, false
	}

	c.Type = appointment.Type(req.Type)
	c.Status = appointment.Status(req.Status)
	c.Notes = req.Notes
	return c, true
}

func createAppointmentHandler(svc *appointment.Service, log zerolog.Logger, selfService bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := decodeCandidate(w, r)
		if !ok {
			return
		}

		var appt *appointment.Appointment
		var err error
		if selfService {
			appt, err = svc.CreateSelfService(r.Context(), c)
		} else {
			appt, err = svc.Create(r.Context(), c)
		}
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toDetailResponse(detail))
	}
}

func updateAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}
		c, ok := decodeCandidate(w, r)
		if !ok {
			return
		}

		appt, err := svc.Update(r.Context(), id, c)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func setStatusHandler(svc *appointment.Service, log zerolog.Logger, gated bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}
		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		var appt *appointment.Appointment
		var err error
		if gated {
			appt, err = svc.Transition(r.Context(), id, appointment.Status(req.Status))
		} else {
			appt, err = svc.SetStatus(r.Context(), id, appointment.Status(req.Status))
		}
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Cancel(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func deleteAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		deleted, err := svc.Delete(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		if !deleted {
			writeError(w, http.StatusNotFound, "not_found", "appointment not found")
			return
		}

		writeJSON(w, http.StatusOK, DeleteResponse{Deleted: true})
	}
}

func listByStatusHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := appointment.Status(r.URL.Query().Get("status"))

		details, err := svc.ListByStatus(r.Context(), status)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		out := make([]AppointmentDetailResponse, 0, len(details))
		for i := range details {
			out = append(out, toDetailResponse(&details[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func rangeParams(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	q := r.URL.Query()
	start, ok = parseWireTime(q.Get("start"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_start", "start must be an ISO-8601 date-time")
		return
	}
	end, ok = parseWireTime(q.Get("end"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_end", "end must be an ISO-8601 date-time")
		return
	}
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "invalid_range", "end must be after start")
		return start, end, false
	}
	return start, end, true
}

func checkAvailabilityHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}
		start, end, ok := rangeParams(w, r)
		if !ok {
			return
		}

		available, err := svc.CheckAvailability(r.Context(), doctorID, start, end)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			DoctorID:  doctorID,
			StartTime: start.Format(wireTime),
			EndTime:   end.Format(wireTime),
			Available: available,
		})
	}
}

func slotsHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}
		start, end, ok := rangeParams(w, r)
		if !ok {
			return
		}

		var slotLen time.Duration
		if v := r.URL.Query().Get("slot_minutes"); v != "" {
			d, err := time.ParseDuration(v + "m")
			if err != nil || d <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_slot_minutes", "slot_minutes must be a positive integer")
				return
			}
			slotLen = d
		}

		seq, err := svc.GenerateSlots(r.Context(), doctorID, start, end, slotLen)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		resp := SlotsResponse{DoctorID: doctorID, Slots: []SlotResponse{}}
		for slot := range seq {
			resp.Slots = append(resp.Slots, toSlotResponse(slot))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func conflictsHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}
		start, end, ok := rangeParams(w, r)
		if !ok {
			return
		}

		excludeID := uuid.Nil
		if v := r.URL.Query().Get("exclude"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_exclude", "exclude must be a valid UUID")
				return
			}
			// Excluding an appointment that does not exist is a client bug.
			exists, err := svc.Exists(r.Context(), id)
			if err != nil {
				writeServiceError(w, r, log, err)
				return
			}
			if !exists {
				writeError(w, http.StatusNotFound, "not_found", "appointment to exclude not found")
				return
			}
			excludeID = id
		}

		conflicts, err := svc.FindConflicts(r.Context(), doctorID, start, end, excludeID)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		resp := ConflictsResponse{DoctorID: doctorID, Conflicts: []AppointmentResponse{}}
		for i := range conflicts {
			resp.Conflicts = append(resp.Conflicts, toAppointmentResponse(&conflicts[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listByDoctorHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		details, err := svc.ListByDoctor(r.Context(), doctorID)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		out := make([]AppointmentDetailResponse, 0, len(details))
		for i := range details {
			out = append(out, toDetailResponse(&details[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listByPatientHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		details, err := svc.ListByPatient(r.Context(), patientID)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		out := make([]AppointmentDetailResponse, 0, len(details))
		for i := range details {
			out = append(out, toDetailResponse(&details[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}
