package appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinDuration = 15 * time.Minute
	MaxDuration = 8 * time.Hour
	MaxNotesLen = 1000
)

var validate = validator.New()

// validateShape checks the candidate's own invariants, independent of any
// stored state. Working-hours policy and conflicts are checked separately
// so each failure carries its own reason.
func validateShape(c *Candidate, now time.Time) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Notes" {
					return Validation(ReasonNotesTooLong,
						fmt.Sprintf("notes must be at most %d characters", MaxNotesLen))
				}
			}
			return Validation(ReasonMissingField, verrs.Error())
		}
		return Internal("validate candidate", err)
	}
	if !c.Type.Valid() {
		return Validation(ReasonInvalidType, fmt.Sprintf("unknown appointment type %q", c.Type))
	}
	if c.Status != "" && !c.Status.Valid() {
		return Validation(ReasonInvalidStatus, fmt.Sprintf("unknown appointment status %q", c.Status))
	}
	if !c.EndTime.After(c.StartTime) {
		return Validation(ReasonEndNotAfterStart, "end time must be after start time")
	}
	switch d := c.EndTime.Sub(c.StartTime); {
	case d < MinDuration:
		return Validation(ReasonDurationTooShort,
			fmt.Sprintf("appointments must last at least %d minutes", int(MinDuration.Minutes())))
	case d > MaxDuration:
		return Validation(ReasonDurationTooLong,
			fmt.Sprintf("appointments must last at most %d hours", int(MaxDuration.Hours())))
	}
	if c.StartTime.Before(now) {
		return Validation(ReasonStartInPast, "appointments cannot be scheduled in the past")
	}
	return nil
}
