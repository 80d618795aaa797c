package schedule

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any
// instant. Touching endpoints do not overlap: an appointment ending at
// 10:00 never conflicts with one starting at 10:00.
//
// Every conflict decision in the engine goes through this predicate (the
// Postgres range query encodes the same inequality); callers must not
// derive their own range logic.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// OverlapsAny reports whether [start, end) overlaps any of the busy
// intervals.
func OverlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
