package engine

import (
	"testing"
	"time"
)

func annotated(available, total int) AnnotatedSlot {
	day := time.Date(2025, time.May, 9, 0, 0, 0, 0, time.UTC)
	return AnnotatedSlot{
		Slot: CandidateSlot{
			Date: day,
			Interval: TimeInterval{
				Start: day.Add(10 * time.Hour),
				End:   day.Add(11 * time.Hour),
			},
		},
		AvailableCount:    available,
		TotalParticipants: total,
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		available, total, want int
	}{
		{2, 3, 67},
		{1, 3, 33},
		{3, 3, 100},
		{0, 3, 0},
		{0, 0, 0}, // no participants: reported as 0, never divide-by-zero
		{1, 6, 17},
	}

	for _, tt := range tests {
		if got := Percent(annotated(tt.available, tt.total)); got != tt.want {
			t.Errorf("Percent(%d/%d) = %d, want %d", tt.available, tt.total, got, tt.want)
		}
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		available, total int
		want             AvailabilityBand
	}{
		{3, 4, BandHigh},   // exactly 0.75
		{4, 4, BandHigh},
		{1, 4, BandMedium}, // exactly 0.25
		{2, 4, BandMedium},
		{0, 4, BandLow},
		{1, 5, BandLow}, // 0.2
		{0, 0, BandLow},
	}

	for _, tt := range tests {
		if got := Band(annotated(tt.available, tt.total)); got != tt.want {
			t.Errorf("Band(%d/%d) = %s, want %s", tt.available, tt.total, got, tt.want)
		}
	}
}

func TestToSlotView(t *testing.T) {
	a := annotated(2, 3)
	a.OrganizerConflict = true

	view := ToSlotView(a)
	if view.Date != "2025-05-09" {
		t.Errorf("date = %q", view.Date)
	}
	if view.StartTime != "10:00" || view.EndTime != "11:00" {
		t.Errorf("times = %q-%q", view.StartTime, view.EndTime)
	}
	if view.DayOfWeek != "Friday" {
		t.Errorf("day of week = %q", view.DayOfWeek)
	}
	if view.Label != "2 of 3 available (67%)" {
		t.Errorf("label = %q", view.Label)
	}
	if view.Band != BandMedium {
		t.Errorf("band = %s", view.Band)
	}
	if !view.OrganizerConflict {
		t.Error("organizer conflict flag lost in view")
	}
}
