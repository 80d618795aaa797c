package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medcal/scheduling/internal/schedule"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const appointmentColumns = `id, doctor_id, patient_id, start_time, end_time, type, status, notes, created_by, created_at, updated_at`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.StartTime,
		&a.EndTime,
		&a.Type,
		&a.Status,
		&a.Notes,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var hours []byte

	err := row.Scan(
		&d.ID,
		&d.FirstName,
		&d.LastName,
		&d.Specialization,
		&d.Active,
		&hours,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	if len(hours) > 0 {
		var m schedule.WorkingHoursMap
		if err := json.Unmarshal(hours, &m); err != nil {
			return nil, fmt.Errorf("parse working hours for doctor %s: %w", d.ID, err)
		}
		d.WorkingHours = m
	}
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (r *PgStore) Save(ctx context.Context, appt *Appointment) (*Appointment, error) {
	// created_by and created_at are write-once; an id collision keeps the
	// original values.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			doctor_id  = EXCLUDED.doctor_id,
			patient_id = EXCLUDED.patient_id,
			start_time = EXCLUDED.start_time,
			end_time   = EXCLUDED.end_time,
			type       = EXCLUDED.type,
			status     = EXCLUDED.status,
			notes      = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING `+appointmentColumns,
		appt.ID, appt.DoctorID, appt.PatientID, appt.StartTime, appt.EndTime,
		appt.Type, appt.Status, appt.Notes, appt.CreatedBy, appt.CreatedAt, appt.UpdatedAt)

	return scanAppointment(row)
}

func (r *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

// FindByDoctorAndRange encodes the half-open overlap rule in SQL:
// start_time < rangeEnd AND end_time > rangeStart. This is the same
// inequality as schedule.Overlaps and must stay in sync with it.
func (r *PgStore) FindByDoctorAndRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time, exclude ...Status) ([]Appointment, error) {
	excluded := make([]string, 0, len(exclude))
	for _, st := range exclude {
		excluded = append(excluded, string(st))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND start_time < $3
		  AND end_time > $2
		  AND NOT (status = ANY($4))
		ORDER BY start_time
	`, doctorID, start, end, excluded)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgStore) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY start_time DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgStore) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY start_time DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgStore) FindByStatus(ctx context.Context, status Status) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = $1
		ORDER BY start_time
	`, status)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgStore) FindPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'PENDING'
		  AND start_time < $1
		ORDER BY start_time
	`, cutoff)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete appointment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgStore) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgStore) DoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, specialization, is_active, working_hours, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgStore) PatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}
