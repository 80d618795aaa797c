package appointment

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidateShape(t *testing.T) {
	now := time.Date(2099, 3, 1, 0, 0, 0, 0, time.UTC)
	base := func() Candidate {
		return Candidate{
			DoctorID:  uuid.New(),
			PatientID: uuid.New(),
			StartTime: time.Date(2099, 3, 2, 10, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2099, 3, 2, 11, 0, 0, 0, time.UTC),
			Type:      TypeConsultation,
			CreatedBy: uuid.New(),
		}
	}

	tests := []struct {
		name       string
		mutate     func(*Candidate)
		wantReason string
	}{
		{"valid", func(c *Candidate) {}, ""},
		{"missing doctor", func(c *Candidate) { c.DoctorID = uuid.Nil }, ReasonMissingField},
		{"missing patient", func(c *Candidate) { c.PatientID = uuid.Nil }, ReasonMissingField},
		{"missing creator", func(c *Candidate) { c.CreatedBy = uuid.Nil }, ReasonMissingField},
		{"missing start", func(c *Candidate) { c.StartTime = time.Time{} }, ReasonMissingField},
		{"notes too long", func(c *Candidate) { c.Notes = strings.Repeat("x", MaxNotesLen+1) }, ReasonNotesTooLong},
		{"notes at the limit", func(c *Candidate) { c.Notes = strings.Repeat("x", MaxNotesLen) }, ""},
		{"unknown type", func(c *Candidate) { c.Type = Type("HOUSECALL") }, ReasonInvalidType},
		{"unknown status", func(c *Candidate) { c.Status = Status("MAYBE") }, ReasonInvalidStatus},
		{"known status accepted", func(c *Candidate) { c.Status = StatusNoShow }, ""},
		{"end equals start", func(c *Candidate) { c.EndTime = c.StartTime }, ReasonEndNotAfterStart},
		{"end before start", func(c *Candidate) { c.EndTime = c.StartTime.Add(-time.Hour) }, ReasonEndNotAfterStart},
		{"too short", func(c *Candidate) { c.EndTime = c.StartTime.Add(10 * time.Minute) }, ReasonDurationTooShort},
		{"minimum length", func(c *Candidate) { c.EndTime = c.StartTime.Add(MinDuration) }, ""},
		{"too long", func(c *Candidate) { c.EndTime = c.StartTime.Add(MaxDuration + time.Minute) }, ReasonDurationTooLong},
		{"start in past", func(c *Candidate) {
			c.StartTime = now.Add(-time.Hour)
			c.EndTime = now.Add(-30 * time.Minute)
		}, ReasonStartInPast},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := validateShape(&c, now)

			if tc.wantReason == "" {
				if err != nil {
					t.Fatalf("got %v, want ok", err)
				}
				return
			}
			var e *Error
			if !errors.As(err, &e) || e.Code != CodeValidation {
				t.Fatalf("got %v, want validation error", err)
			}
			if e.Reason != tc.wantReason {
				t.Errorf("got reason %q, want %q", e.Reason, tc.wantReason)
			}
		})
	}
}
