package appointment

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medcal/scheduling/internal/config"
	redisclient "github.com/medcal/scheduling/internal/redis"
	"github.com/medcal/scheduling/internal/schedule"
)

// Service orchestrates the appointment lifecycle: shape validation,
// working-hours policy, conflict detection and persistence. It is
// stateless; the per-doctor lock is the only write arbitration, so the
// service is safe to call from concurrent request handlers.
type Service struct {
	store  Store
	locker redisclient.Locker
	cfg    config.Config
	log    zerolog.Logger
}

func NewService(store Store, locker redisclient.Locker, cfg config.Config, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		locker: locker,
		cfg:    cfg,
		log:    log,
	}
}

// Create books a staff-entered appointment. Status defaults to SCHEDULED
// when the candidate does not carry one.
func (s *Service) Create(ctx context.Context, c Candidate) (*Appointment, error) {
	return s.create(ctx, c, StatusScheduled)
}

// CreateSelfService books a patient-entered appointment. Status defaults
// to PENDING until staff confirms it.
func (s *Service) CreateSelfService(ctx context.Context, c Candidate) (*Appointment, error) {
	return s.create(ctx, c, StatusPending)
}

func (s *Service) create(ctx context.Context, c Candidate, defaultStatus Status) (*Appointment, error) {
	if err := validateShape(&c, time.Now()); err != nil {
		return nil, err
	}
	doctor, err := s.loadDoctor(ctx, c.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Active {
		return nil, Validation(ReasonDoctorInactive, "doctor is not active")
	}
	if _, err := s.loadPatient(ctx, c.PatientID); err != nil {
		return nil, err
	}
	if err := checkWorkingHours(doctor.WorkingHours, c.StartTime, c.EndTime); err != nil {
		return nil, err
	}

	status := c.Status
	if status == "" {
		status = defaultStatus
	}

	// The conflict check and the insert must sit inside the same critical
	// section, otherwise two concurrent bookings can both pass the check.
	var created *Appointment
	err = s.locker.WithDoctorLock(ctx, c.DoctorID, func(lockCtx context.Context) error {
		conflict, err := s.HasConflict(lockCtx, c.DoctorID, c.StartTime, c.EndTime, uuid.Nil)
		if err != nil {
			return err
		}
		if conflict {
			return Conflict("doctor already has an appointment during this time")
		}

		now := time.Now()
		appt := &Appointment{
			ID:        uuid.New(),
			DoctorID:  c.DoctorID,
			PatientID: c.PatientID,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			Type:      c.Type,
			Status:    status,
			Notes:     c.Notes,
			CreatedBy: c.CreatedBy,
			CreatedAt: now,
			UpdatedAt: now,
		}
		created, err = s.store.Save(lockCtx, appt)
		if err != nil {
			return storeErr("save appointment", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, &Error{
				Code:    CodeConflict,
				Reason:  ReasonDoctorLocked,
				Message: "doctor's calendar is being modified, please retry",
			}
		}
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", created.ID.String()).
		Str("doctor_id", created.DoctorID.String()).
		Str("patient_id", created.PatientID.String()).
		Time("start", created.StartTime).
		Str("status", string(created.Status)).
		Msg("appointment created")

	return created, nil
}

// Update overlays the candidate on the stored appointment and re-runs the
// full validation and conflict pipeline, excluding the appointment from
// its own conflict set. Any failure leaves the stored record untouched.
// An empty Status keeps the current one and an empty CreatedBy keeps the
// original creator; all other fields are taken from the candidate.
func (s *Service) Update(ctx context.Context, id uuid.UUID, c Candidate) (*Appointment, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == "" {
		c.Status = existing.Status
	}
	if c.CreatedBy == uuid.Nil {
		c.CreatedBy = existing.CreatedBy
	}

	if err := validateShape(&c, time.Now()); err != nil {
		return nil, err
	}
	doctor, err := s.loadDoctor(ctx, c.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Active {
		return nil, Validation(ReasonDoctorInactive, "doctor is not active")
	}
	if _, err := s.loadPatient(ctx, c.PatientID); err != nil {
		return nil, err
	}
	if err := checkWorkingHours(doctor.WorkingHours, c.StartTime, c.EndTime); err != nil {
		return nil, err
	}

	var updated *Appointment
	err = s.locker.WithDoctorLock(ctx, c.DoctorID, func(lockCtx context.Context) error {
		conflict, err := s.HasConflict(lockCtx, c.DoctorID, c.StartTime, c.EndTime, id)
		if err != nil {
			return err
		}
		if conflict {
			return Conflict("doctor already has an appointment during this time")
		}

		next := *existing
		next.DoctorID = c.DoctorID
		next.PatientID = c.PatientID
		next.StartTime = c.StartTime
		next.EndTime = c.EndTime
		next.Type = c.Type
		next.Status = c.Status
		next.Notes = c.Notes
		next.UpdatedAt = time.Now()

		updated, err = s.store.Save(lockCtx, &next)
		if err != nil {
			return storeErr("save appointment", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, &Error{
				Code:    CodeConflict,
				Reason:  ReasonDoctorLocked,
				Message: "doctor's calendar is being modified, please retry",
			}
		}
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", updated.ID.String()).
		Str("doctor_id", updated.DoctorID.String()).
		Msg("appointment updated")

	return updated, nil
}

// SetStatus overwrites the status without consulting the lifecycle graph
// and without re-checking availability. This mirrors the administrative
// path of the legacy system; Transition is the gated alternative.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	if !status.Valid() {
		return nil, Validation(ReasonInvalidStatus, fmt.Sprintf("unknown appointment status %q", status))
	}
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	appt.Status = status
	appt.UpdatedAt = time.Now()
	saved, err := s.store.Save(ctx, appt)
	if err != nil {
		return nil, storeErr("save status", err)
	}
	return saved, nil
}

// Transition moves the appointment along the modeled lifecycle graph and
// rejects moves the graph does not allow.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next Status) (*Appointment, error) {
	if !next.Valid() {
		return nil, Validation(ReasonInvalidStatus, fmt.Sprintf("unknown appointment status %q", next))
	}
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanTransitionTo(next) {
		return nil, Validation(ReasonIllegalTransition,
			fmt.Sprintf("cannot transition from %s to %s", appt.Status, next))
	}
	appt.Status = next
	appt.UpdatedAt = time.Now()
	saved, err := s.store.Save(ctx, appt)
	if err != nil {
		return nil, storeErr("save status", err)
	}
	return saved, nil
}

// Cancel marks the appointment CANCELLED. Cancelling an already-cancelled
// appointment is not an error; the record comes back still cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.SetStatus(ctx, id, StatusCancelled)
}

// Delete removes the record entirely and reports whether one existed.
// Distinct from Cancel: the appointment is gone, not merely released from
// the calendar.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	existed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return false, storeErr("delete appointment", err)
	}
	if existed {
		s.log.Info().Str("appointment_id", id.String()).Msg("appointment deleted")
	}
	return existed, nil
}

// CheckAvailability reports whether the doctor's calendar is clear for
// [start, end). It checks conflicts only, not the working-hours policy,
// so a pre-flight check can report a slot free that Create would still
// reject as out of hours.
func (s *Service) CheckAvailability(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error) {
	conflict, err := s.HasConflict(ctx, doctorID, start, end, uuid.Nil)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// GenerateSlots enumerates the doctor's candidate slots across
// [rangeStart, rangeEnd). The doctor's appointments are fetched once for
// the whole range; availability is computed against that snapshot.
func (s *Service) GenerateSlots(ctx context.Context, doctorID uuid.UUID, rangeStart, rangeEnd time.Time, slotLen time.Duration) (iter.Seq[schedule.AvailabilitySlot], error) {
	doctor, err := s.loadDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	// schedule.Slots tiles the full working day of every day the range
	// touches, so the busy fetch must cover those whole days or bookings
	// just outside the range come back marked available.
	fetchStart, fetchEnd := dayBounds(rangeStart, rangeEnd)
	appts, err := s.store.FindByDoctorAndRange(ctx, doctorID, fetchStart, fetchEnd, StatusCancelled)
	if err != nil {
		return nil, storeErr("load appointments for range", err)
	}
	busy := make([]schedule.Interval, 0, len(appts))
	for _, a := range appts {
		busy = append(busy, schedule.Interval{Start: a.StartTime, End: a.EndTime})
	}
	if slotLen <= 0 {
		slotLen = s.cfg.SlotLength
	}
	return schedule.Slots(doctor.WorkingHours, busy, rangeStart, rangeEnd, slotLen), nil
}

// ExpireStalePending cancels PENDING appointments whose start time has
// passed; they were never confirmed and can no longer be honored. Run
// periodically by the expiry worker. Returns how many were cancelled.
func (s *Service) ExpireStalePending(ctx context.Context) (int, error) {
	stale, err := s.store.FindPendingStartedBefore(ctx, time.Now())
	if err != nil {
		return 0, storeErr("find stale pending appointments", err)
	}

	cancelled := 0
	for _, appt := range stale {
		appt.Status = StatusCancelled
		appt.UpdatedAt = time.Now()
		if _, err := s.store.Save(ctx, &appt); err != nil {
			s.log.Error().Err(err).
				Str("appointment_id", appt.ID.String()).
				Str("op", "expire_stale_pending").
				Msg("failed to cancel stale pending appointment")
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// Exists reports whether an appointment with the id is stored, without
// loading it.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := s.store.ExistsByID(ctx, id)
	if err != nil {
		return false, storeErr("check appointment exists", err)
	}
	return ok, nil
}

// Get returns the appointment enriched with display names.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, appt), nil
}

// ListByDoctor returns the doctor's appointments, newest first.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Detail, error) {
	appts, err := s.store.FindByDoctor(ctx, doctorID)
	if err != nil {
		return nil, storeErr("list appointments by doctor", err)
	}
	return s.enrichAll(ctx, appts), nil
}

// ListByPatient returns the patient's appointments, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Detail, error) {
	appts, err := s.store.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, storeErr("list appointments by patient", err)
	}
	return s.enrichAll(ctx, appts), nil
}

// ListByStatus returns all appointments currently in the given status.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Detail, error) {
	if !status.Valid() {
		return nil, Validation(ReasonInvalidStatus, fmt.Sprintf("unknown appointment status %q", status))
	}
	appts, err := s.store.FindByStatus(ctx, status)
	if err != nil {
		return nil, storeErr("list appointments by status", err)
	}
	return s.enrichAll(ctx, appts), nil
}

// --- helpers ---

func (s *Service) load(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, NotFound("appointment")
		}
		return nil, storeErr("load appointment", err)
	}
	return appt, nil
}

func (s *Service) loadDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.store.DoctorByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, NotFound("doctor")
		}
		return nil, storeErr("load doctor", err)
	}
	return d, nil
}

func (s *Service) loadPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.store.PatientByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, NotFound("patient")
		}
		return nil, storeErr("load patient", err)
	}
	return p, nil
}

// dayBounds expands [rangeStart, rangeEnd) to whole calendar days:
// midnight of rangeStart's day through midnight after the last day the
// range touches.
func dayBounds(rangeStart, rangeEnd time.Time) (time.Time, time.Time) {
	sy, sm, sd := rangeStart.Date()
	start := time.Date(sy, sm, sd, 0, 0, 0, 0, rangeStart.Location())

	ey, em, ed := rangeEnd.Date()
	end := time.Date(ey, em, ed, 0, 0, 0, 0, rangeEnd.Location())
	if rangeEnd.After(end) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// checkWorkingHours translates the schedule policy's answer into the
// error taxonomy, keeping weekend and out-of-hours reasons distinct.
func checkWorkingHours(m schedule.WorkingHoursMap, start, end time.Time) error {
	err := schedule.CheckWithinWorkingHours(m, start, end)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, schedule.ErrWeekend):
		return Validation(ReasonWeekend, "appointments cannot be scheduled on weekends")
	case errors.Is(err, schedule.ErrNonWorkingDay):
		return Validation(ReasonNonWorkingDay, "doctor does not work on this day")
	default:
		return Validation(ReasonOutsideHours, "appointment must be within the doctor's working hours")
	}
}

// enrich resolves display names best effort. Lookup failures are logged
// and fall back to "Unknown"; they never fail the operation and never
// mask a validation or conflict failure, which happen before enrichment.
func (s *Service) enrich(ctx context.Context, appt *Appointment) *Detail {
	detail := &Detail{
		Appointment: *appt,
		DoctorName:  "Unknown",
		PatientName: "Unknown",
	}
	if doc, err := s.store.DoctorByID(ctx, appt.DoctorID); err == nil {
		detail.DoctorName = doc.FirstName + " " + doc.LastName
		detail.DoctorSpecialization = doc.Specialization
	} else {
		s.log.Warn().Err(err).
			Str("appointment_id", appt.ID.String()).
			Str("op", "enrich").
			Msg("doctor lookup failed")
	}
	if p, err := s.store.PatientByID(ctx, appt.PatientID); err == nil {
		detail.PatientName = p.FirstName + " " + p.LastName
	} else {
		s.log.Warn().Err(err).
			Str("appointment_id", appt.ID.String()).
			Str("op", "enrich").
			Msg("patient lookup failed")
	}
	return detail
}

func (s *Service) enrichAll(ctx context.Context, appts []Appointment) []Detail {
	details := make([]Detail, 0, len(appts))
	for i := range appts {
		details = append(details, *s.enrich(ctx, &appts[i]))
	}
	return details
}
