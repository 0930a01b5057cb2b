package engine

import (
	"fmt"
	"sort"
	"time"
)

// TimeInterval is a half-open interval [Start, End). Construct via NewTimeInterval
// to enforce Start < End; treat values as immutable.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if !start.Before(end) {
		return TimeInterval{}, fmt.Errorf("interval start %s must be before end %s", start, end)
	}
	return TimeInterval{Start: start, End: end}, nil
}

// Overlaps reports whether a and b share any instant. Half-open semantics:
// intervals that merely touch at a boundary do not overlap.
func Overlaps(a, b TimeInterval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// SortIntervals orders intervals by start time in place. The conflict detector
// uses the ordering for early termination; correctness does not depend on it.
func SortIntervals(intervals []TimeInterval) {
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})
}

// MergeIntervals collapses overlapping or adjacent intervals into a minimal
// sorted set. The input is not modified.
func MergeIntervals(intervals []TimeInterval) []TimeInterval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]TimeInterval, len(intervals))
	copy(sorted, intervals)
	SortIntervals(sorted)

	merged := []TimeInterval{sorted[0]}
	for _, current := range sorted[1:] {
		last := &merged[len(merged)-1]
		if current.Start.After(last.End) {
			merged = append(merged, current)
			continue
		}
		if current.End.After(last.End) {
			last.End = current.End
		}
	}
	return merged
}

// TimeOfDay is minutes from midnight, used for daily window boundaries.
type TimeOfDay int

// ParseTimeOfDay parses "15:04" style clock times.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// OnDate anchors the clock time to a calendar date in the date's location.
func (t TimeOfDay) OnDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, date.Location())
}

// DayWindow bounds slot generation within each day, e.g. 09:00-17:00.
// Invariant: Start < End.
type DayWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Minutes returns the window length.
func (w DayWindow) Minutes() int {
	return int(w.End) - int(w.Start)
}
