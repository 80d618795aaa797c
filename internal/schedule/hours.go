package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrWeekend       = errors.New("weekends are not bookable")
	ErrNonWorkingDay = errors.New("doctor does not work on this day")
	ErrOutsideHours  = errors.New("outside working hours")
)

// Clock is a time of day with minute precision, location independent.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid clock value %q", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ClockOf extracts the time of day from t.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

func (c Clock) minutes() int { return c.Hour*60 + c.Minute }

func (c Clock) Before(o Clock) bool { return c.minutes() < o.minutes() }

func (c Clock) After(o Clock) bool { return c.minutes() > o.minutes() }

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// On anchors the clock on the calendar day of d, in d's location.
func (c Clock) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, 0, 0, d.Location())
}

// WorkingHours is a doctor's bookable window for a single weekday.
type WorkingHours struct {
	Start Clock
	End   Clock
}

// WorkingHoursMap maps weekdays to bookable windows. A missing weekday is
// a non-working day. A nil map means the doctor has no explicit schedule
// and the default policy applies.
type WorkingHoursMap map[time.Weekday]WorkingHours

// DefaultWorkingHours is the fallback schedule used when a doctor has no
// explicit working-hours map: 08:00-18:00, Monday through Friday.
func DefaultWorkingHours() WorkingHoursMap {
	w := WorkingHours{Start: Clock{Hour: 8}, End: Clock{Hour: 18}}
	return WorkingHoursMap{
		time.Monday:    w,
		time.Tuesday:   w,
		time.Wednesday: w,
		time.Thursday:  w,
		time.Friday:    w,
	}
}

// WindowFor resolves the bookable window for a weekday. This is the only
// place the default-schedule fallback happens. Saturday and Sunday are
// never bookable, even when a doctor's map lists them.
func (m WorkingHoursMap) WindowFor(day time.Weekday) (WorkingHours, bool) {
	if day == time.Saturday || day == time.Sunday {
		return WorkingHours{}, false
	}
	if m == nil {
		m = DefaultWorkingHours()
	}
	w, ok := m[day]
	return w, ok
}

// CheckWithinWorkingHours reports whether [start, end) falls inside the
// bookable window for start's weekday. It returns ErrWeekend,
// ErrNonWorkingDay or ErrOutsideHours so the caller can tell the user
// which rule rejected the interval.
func CheckWithinWorkingHours(m WorkingHoursMap, start, end time.Time) error {
	day := start.Weekday()
	if day == time.Saturday || day == time.Sunday {
		return ErrWeekend
	}
	w, ok := m.WindowFor(day)
	if !ok {
		return ErrNonWorkingDay
	}
	// An interval crossing midnight can never fit a same-day window.
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return ErrOutsideHours
	}
	if ClockOf(start).Before(w.Start) || ClockOf(end).After(w.End) {
		return ErrOutsideHours
	}
	return nil
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// MarshalJSON encodes the map in the stored shape, lowercase weekday
// names with "HH:MM" bounds: {"monday":{"start":"08:00","end":"18:00"}}.
func (m WorkingHoursMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]string, len(m))
	for day, w := range m {
		out[strings.ToLower(day.String())] = map[string]string{
			"start": w.Start.String(),
			"end":   w.End.String(),
		}
	}
	return json.Marshal(out)
}

func (m *WorkingHoursMap) UnmarshalJSON(b []byte) error {
	var raw map[string]map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(WorkingHoursMap, len(raw))
	for name, win := range raw {
		day, ok := weekdayByName[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown weekday %q in working hours", name)
		}
		start, err := ParseClock(win["start"])
		if err != nil {
			return fmt.Errorf("working hours for %s: %w", name, err)
		}
		end, err := ParseClock(win["end"])
		if err != nil {
			return fmt.Errorf("working hours for %s: %w", name, err)
		}
		if !end.After(start) {
			return fmt.Errorf("working hours for %s: end %s not after start %s", name, end, start)
		}
		out[day] = WorkingHours{Start: start, End: end}
	}
	*m = out
	return nil
}
