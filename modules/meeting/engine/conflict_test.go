package engine

import (
	"testing"
	"time"
)

func interval(t *testing.T, day time.Time, start, end string) TimeInterval {
	t.Helper()
	s, err := ParseTimeOfDay(start)
	if err != nil {
		t.Fatalf("parse %q: %v", start, err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		t.Fatalf("parse %q: %v", end, err)
	}
	iv, err := NewTimeInterval(s.OnDate(day), e.OnDate(day))
	if err != nil {
		t.Fatalf("interval %s-%s: %v", start, end, err)
	}
	return iv
}

func TestOverlaps(t *testing.T) {
	day := date(2025, time.May, 9)

	tests := []struct {
		name string
		a, b TimeInterval
		want bool
	}{
		{"identical", interval(t, day, "10:00", "11:00"), interval(t, day, "10:00", "11:00"), true},
		{"contained", interval(t, day, "10:00", "11:00"), interval(t, day, "10:15", "10:45"), true},
		{"partial overlap", interval(t, day, "10:00", "11:00"), interval(t, day, "10:30", "11:30"), true},
		{"touching at boundary", interval(t, day, "10:00", "11:00"), interval(t, day, "11:00", "12:00"), false},
		{"disjoint", interval(t, day, "10:00", "11:00"), interval(t, day, "13:00", "14:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasConflict(t *testing.T) {
	day := date(2025, time.May, 9)
	slot := CandidateSlot{Date: day, Interval: interval(t, day, "10:00", "11:00")}

	tests := []struct {
		name string
		busy []TimeInterval
		want bool
	}{
		{"no busy intervals", nil, false},
		{"overlapping busy", []TimeInterval{interval(t, day, "10:30", "10:45")}, true},
		{"busy ends exactly at slot start", []TimeInterval{interval(t, day, "09:00", "10:00")}, false},
		{"busy starts exactly at slot end", []TimeInterval{interval(t, day, "11:00", "12:00")}, false},
		{"unsorted input still detected", []TimeInterval{
			interval(t, day, "14:00", "15:00"),
			interval(t, day, "10:15", "10:30"),
			interval(t, day, "08:00", "09:00"),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasConflict(slot, tt.busy); got != tt.want {
				t.Errorf("HasConflict = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasConflictSorted_EarlyTermination(t *testing.T) {
	day := date(2025, time.May, 9)
	slot := CandidateSlot{Date: day, Interval: interval(t, day, "10:00", "11:00")}

	busy := []TimeInterval{
		interval(t, day, "08:00", "09:00"),
		interval(t, day, "12:00", "13:00"),
		interval(t, day, "14:00", "15:00"),
	}
	SortIntervals(busy)

	if hasConflictSorted(slot, busy) {
		t.Error("expected no conflict")
	}

	busy = append(busy, interval(t, day, "10:30", "10:40"))
	SortIntervals(busy)
	if !hasConflictSorted(slot, busy) {
		t.Error("expected conflict")
	}
}

func TestMergeIntervals(t *testing.T) {
	day := date(2025, time.May, 9)

	merged := MergeIntervals([]TimeInterval{
		interval(t, day, "13:00", "14:00"),
		interval(t, day, "09:00", "10:00"),
		interval(t, day, "09:30", "11:00"),
		interval(t, day, "11:00", "11:30"), // adjacent, absorbed
	})

	if len(merged) != 2 {
		t.Fatalf("expected 2 merged intervals, got %d", len(merged))
	}
	if !merged[0].Start.Equal(interval(t, day, "09:00", "11:30").Start) ||
		!merged[0].End.Equal(interval(t, day, "09:00", "11:30").End) {
		t.Errorf("merged[0] = %v-%v, want 09:00-11:30", merged[0].Start, merged[0].End)
	}
}

func TestNewTimeInterval_RejectsInverted(t *testing.T) {
	day := date(2025, time.May, 9)
	at10 := TimeOfDay(10 * 60).OnDate(day)

	if _, err := NewTimeInterval(at10, at10); err == nil {
		t.Error("expected error for zero-length interval")
	}
	if _, err := NewTimeInterval(at10.Add(time.Hour), at10); err == nil {
		t.Error("expected error for inverted interval")
	}
}
