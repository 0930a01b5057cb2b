package service

import (
	"testing"
	"time"
)

func TestNormalizeBusyIntervals_MixedShapes(t *testing.T) {
	busy := []googleBusyWindow{
		{Start: "2025-05-05T09:00:00Z", End: "2025-05-05T10:30:00Z"},
		// All-day event, date-only bounds
		{Start: "2025-05-06", End: "2025-05-06"},
	}

	intervals := normalizeBusyIntervals(busy, time.UTC)
	if len(intervals) != 2 {
		t.Fatalf("intervals = %d, want 2", len(intervals))
	}

	if !intervals[0].Start.Equal(time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)) ||
		!intervals[0].End.Equal(time.Date(2025, 5, 5, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("timed interval = %v", intervals[0])
	}

	// The all-day event covers the full local day [00:00, next 00:00)
	if !intervals[1].Start.Equal(time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC)) ||
		!intervals[1].End.Equal(time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("all-day interval = %v", intervals[1])
	}
}

func TestNormalizeBusyIntervals_DropsMalformedAndMerges(t *testing.T) {
	busy := []googleBusyWindow{
		{Start: "not-a-time", End: "2025-05-05T10:00:00Z"},
		{Start: "2025-05-05T11:00:00Z", End: "2025-05-05T10:00:00Z"}, // inverted
		{Start: "2025-05-05T09:00:00Z", End: "2025-05-05T10:00:00Z"},
		{Start: "2025-05-05T09:30:00Z", End: "2025-05-05T11:00:00Z"}, // overlaps previous
	}

	intervals := normalizeBusyIntervals(busy, time.UTC)
	if len(intervals) != 1 {
		t.Fatalf("intervals = %d, want 1 merged window", len(intervals))
	}
	if !intervals[0].Start.Equal(time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)) ||
		!intervals[0].End.Equal(time.Date(2025, 5, 5, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("merged interval = %v", intervals[0])
	}
}

func TestParseBusyTime_EndDateRollsToNextMidnight(t *testing.T) {
	end, ok := parseBusyTime("2025-05-06", time.UTC, true)
	if !ok {
		t.Fatal("parseBusyTime failed")
	}
	if !end.Equal(time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want next midnight", end)
	}

	start, ok := parseBusyTime("2025-05-06", time.UTC, false)
	if !ok {
		t.Fatal("parseBusyTime failed")
	}
	if !start.Equal(time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want midnight", start)
	}
}
