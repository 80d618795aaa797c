package schedule

import (
	"iter"
	"time"
)

// DefaultSlotLength is the slot granularity used when a caller does not
// request a specific one.
const DefaultSlotLength = 30 * time.Minute

// AvailabilitySlot is a candidate booking window. Slots are computed
// fresh per query and never persisted.
type AvailabilitySlot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// Slots enumerates the slotLen candidate slots for every working day in
// [rangeStart, rangeEnd), in chronological order. Each day's resolved
// window is tiled into consecutive blocks starting at the window's open
// time; tiling stops once a block's end would pass the close time. A
// slot is available when it overlaps none of the busy intervals.
//
// The sequence is lazy and restartable: callers may materialize it, stop
// early, or iterate it more than once. Callers are expected to fetch the
// busy intervals once for the whole range rather than per slot.
func Slots(m WorkingHoursMap, busy []Interval, rangeStart, rangeEnd time.Time, slotLen time.Duration) iter.Seq[AvailabilitySlot] {
	if slotLen <= 0 {
		slotLen = DefaultSlotLength
	}
	return func(yield func(AvailabilitySlot) bool) {
		for day := rangeStart; day.Before(rangeEnd); day = nextMidnight(day) {
			w, ok := m.WindowFor(day.Weekday())
			if !ok {
				continue
			}
			closeAt := w.End.On(day)
			for start := w.Start.On(day); !start.Add(slotLen).After(closeAt); start = start.Add(slotLen) {
				end := start.Add(slotLen)
				slot := AvailabilitySlot{
					Start:     start,
					End:       end,
					Available: !OverlapsAny(start, end, busy),
				}
				if !yield(slot) {
					return
				}
			}
		}
	}
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
