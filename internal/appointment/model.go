package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/medcal/scheduling/internal/schedule"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether the lifecycle models no further transitions
// from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether the modeled lifecycle allows moving
// from s to next. SetStatus deliberately bypasses this graph; Transition
// enforces it.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusScheduled || next == StatusCancelled
	case StatusScheduled:
		return next == StatusCompleted || next == StatusCancelled || next == StatusNoShow
	}
	return false
}

type Type string

const (
	TypeConsultation Type = "CONSULTATION"
	TypeFollowup     Type = "FOLLOWUP"
	TypeCheckup      Type = "CHECKUP"
	TypeEmergency    Type = "EMERGENCY"
)

func (t Type) Valid() bool {
	switch t {
	case TypeConsultation, TypeFollowup, TypeCheckup, TypeEmergency:
		return true
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Type      Type
	Status    Status
	Notes     string
	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Specialization string
	Active         bool
	// WorkingHours is nil when the doctor has no explicit schedule, in
	// which case the default policy applies.
	WorkingHours schedule.WorkingHoursMap
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Patient struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Candidate is a booking request before validation. Status is optional;
// the entry point's default applies when it is empty.
type Candidate struct {
	DoctorID  uuid.UUID `validate:"required"`
	PatientID uuid.UUID `validate:"required"`
	StartTime time.Time `validate:"required"`
	EndTime   time.Time `validate:"required"`
	Type      Type      `validate:"required"`
	Status    Status
	Notes     string    `validate:"max=1000"`
	CreatedBy uuid.UUID `validate:"required"`
}

// Detail is an appointment enriched with display names. Name lookups are
// best effort: a failed lookup yields "Unknown", never an error.
type Detail struct {
	Appointment
	DoctorName           string
	DoctorSpecialization string
	PatientName          string
}
