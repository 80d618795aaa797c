package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FindConflicts returns the doctor's non-cancelled appointments that
// overlap [start, end). CANCELLED appointments never block a slot;
// PENDING and SCHEDULED ones do, since a pending booking still occupies
// the calendar until it is rejected. excludeID removes the appointment
// being updated from its own conflict set; pass uuid.Nil on the create
// path.
func (s *Service) FindConflicts(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]Appointment, error) {
	found, err := s.store.FindByDoctorAndRange(ctx, doctorID, start, end, StatusCancelled)
	if err != nil {
		return nil, storeErr("find conflicts", err)
	}
	conflicts := make([]Appointment, 0, len(found))
	for _, a := range found {
		if excludeID != uuid.Nil && a.ID == excludeID {
			continue
		}
		conflicts = append(conflicts, a)
	}
	return conflicts, nil
}

// HasConflict reports whether any non-cancelled appointment overlaps the
// candidate interval.
func (s *Service) HasConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	conflicts, err := s.FindConflicts(ctx, doctorID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
