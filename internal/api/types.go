package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/medcal/scheduling/internal/appointment"
	"github.com/medcal/scheduling/internal/schedule"
)

// wireTime is the ISO-8601 local date-time layout used for appointment
// intervals on the wire, second precision.
const wireTime = "2006-01-02T15:04:05"

type AppointmentRequest struct {
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Type      string `json:"type"`
	Status    string `json:"status,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedBy string `json:"created_by"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppointmentDetailResponse struct {
	AppointmentResponse
	DoctorName           string `json:"doctor_name"`
	DoctorSpecialization string `json:"doctor_specialization,omitempty"`
	PatientName          string `json:"patient_name"`
}

type AvailabilityResponse struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Available bool      `json:"available"`
}

type SlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

type SlotsResponse struct {
	DoctorID uuid.UUID      `json:"doctor_id"`
	Slots    []SlotResponse `json:"slots"`
}

type ConflictsResponse struct {
	DoctorID  uuid.UUID             `json:"doctor_id"`
	Conflicts []AppointmentResponse `json:"conflicts"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		StartTime: a.StartTime.Format(wireTime),
		EndTime:   a.EndTime.Format(wireTime),
		Type:      string(a.Type),
		Status:    string(a.Status),
		Notes:     a.Notes,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toDetailResponse(d *appointment.Detail) AppointmentDetailResponse {
	return AppointmentDetailResponse{
		AppointmentResponse:  toAppointmentResponse(&d.Appointment),
		DoctorName:           d.DoctorName,
		DoctorSpecialization: d.DoctorSpecialization,
		PatientName:          d.PatientName,
	}
}

func toSlotResponse(s schedule.AvailabilitySlot) SlotResponse {
	return SlotResponse{
		StartTime: s.Start.Format(wireTime),
		EndTime:   s.End.Format(wireTime),
		Available: s.Available,
	}
}
