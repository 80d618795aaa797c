package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
)

// Store contains all durable-state interactions needed by the service.
// The store is the only shared mutable resource; the service treats it as
// an external transactional dependency and relies on the per-doctor lock
// for write arbitration.
type Store interface {
	// Save inserts the appointment or, when the id already exists,
	// overwrites its mutable fields. CreatedBy and CreatedAt are immutable
	// after insert.
	Save(ctx context.Context, appt *Appointment) (*Appointment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// FindByDoctorAndRange returns the doctor's appointments whose
	// interval overlaps [start, end), chronologically. Statuses listed in
	// exclude are filtered out.
	FindByDoctorAndRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time, exclude ...Status) ([]Appointment, error)
	FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
	FindByStatus(ctx context.Context, status Status) ([]Appointment, error)
	// FindPendingStartedBefore returns PENDING appointments whose start
	// time is before cutoff. Used by the stale-pending sweeper.
	FindPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]Appointment, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// Directory reads
	DoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	PatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
}
