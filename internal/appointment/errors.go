package appointment

import (
	"context"
	"errors"
	"fmt"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeConflict         = "CONFLICT"
	CodeNotFound         = "NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// Machine-readable reasons carried on validation and conflict errors so
// the caller can present an actionable message.
const (
	ReasonMissingField      = "missing_field"
	ReasonNotesTooLong      = "notes_too_long"
	ReasonInvalidType       = "invalid_type"
	ReasonInvalidStatus     = "invalid_status"
	ReasonEndNotAfterStart  = "end_not_after_start"
	ReasonDurationTooShort  = "duration_too_short"
	ReasonDurationTooLong   = "duration_too_long"
	ReasonStartInPast       = "start_in_past"
	ReasonWeekend           = "weekend"
	ReasonNonWorkingDay     = "non_working_day"
	ReasonOutsideHours      = "outside_working_hours"
	ReasonDoctorInactive    = "doctor_inactive"
	ReasonIllegalTransition = "illegal_transition"
	ReasonDoctorLocked      = "doctor_calendar_locked"
)

// Error is the typed outcome returned for every expected failure. The
// four expected codes (validation, conflict, not found, store
// unavailable) map to user-facing responses; CodeInternal marks failures
// that are logged and surfaced opaquely.
type Error struct {
	Code    string
	Message string
	Reason  string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(reason, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Reason: reason}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Internal(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

func hasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IsValidation(err error) bool       { return hasCode(err, CodeValidation) }
func IsConflict(err error) bool         { return hasCode(err, CodeConflict) }
func IsNotFound(err error) bool         { return hasCode(err, CodeNotFound) }
func IsStoreUnavailable(err error) bool { return hasCode(err, CodeStoreUnavailable) }

// storeErr classifies a store failure. Context expiry means the store did
// not answer within the caller's deadline; anything else is an internal
// failure that the caller logs with the operation name.
func storeErr(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{
			Code:    CodeStoreUnavailable,
			Message: "appointment store did not respond",
			Err:     fmt.Errorf("%s: %w", op, err),
		}
	}
	return Internal("appointment store failure", fmt.Errorf("%s: %w", op, err))
}
