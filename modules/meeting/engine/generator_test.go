package engine

import (
	"math/rand"
	"testing"
	"time"

	"meetsync/core/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustWindow(t *testing.T, start, end string) DayWindow {
	t.Helper()
	s, err := ParseTimeOfDay(start)
	if err != nil {
		t.Fatalf("parse window start: %v", err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		t.Fatalf("parse window end: %v", err)
	}
	return DayWindow{Start: s, End: e}
}

func TestGenerateSlots_SingleDayBusinessHours(t *testing.T) {
	// 2025-05-09, 09:00-17:00, 60 minute slots: exactly 8, back to back.
	req := SlotRequest{
		RangeStart:      date(2025, time.May, 9),
		RangeEnd:        date(2025, time.May, 9),
		Window:          mustWindow(t, "09:00", "17:00"),
		DurationMinutes: 60,
	}

	slots, appErr := GenerateSlots(req)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(slots))
	}

	first := slots[0].Interval
	if !first.Start.Equal(time.Date(2025, time.May, 9, 9, 0, 0, 0, time.UTC)) ||
		!first.End.Equal(time.Date(2025, time.May, 9, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("first slot = %s-%s, want 09:00-10:00", first.Start, first.End)
	}

	last := slots[len(slots)-1].Interval
	if !last.Start.Equal(time.Date(2025, time.May, 9, 16, 0, 0, 0, time.UTC)) ||
		!last.End.Equal(time.Date(2025, time.May, 9, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("last slot = %s-%s, want 16:00-17:00", last.Start, last.End)
	}
}

func TestGenerateSlots_PartialRemainderDropped(t *testing.T) {
	// 90 minute window, 60 minute slots: one slot, the trailing 30 minutes unused.
	req := SlotRequest{
		RangeStart:      date(2025, time.May, 9),
		RangeEnd:        date(2025, time.May, 9),
		Window:          mustWindow(t, "09:00", "10:30"),
		DurationMinutes: 60,
	}

	slots, appErr := GenerateSlots(req)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
}

func TestGenerateSlots_WindowTooShortIsNotAnError(t *testing.T) {
	req := SlotRequest{
		RangeStart:      date(2025, time.May, 9),
		RangeEnd:        date(2025, time.May, 9),
		Window:          mustWindow(t, "09:00", "09:30"),
		DurationMinutes: 60,
	}

	slots, appErr := GenerateSlots(req)
	if appErr != nil {
		t.Fatalf("expected no error for too-short window, got %v", appErr)
	}
	if len(slots) != 0 {
		t.Fatalf("expected 0 slots, got %d", len(slots))
	}
}

func TestGenerateSlots_InvalidRequests(t *testing.T) {
	window := mustWindow(t, "09:00", "17:00")
	tests := []struct {
		name string
		req  SlotRequest
	}{
		{
			name: "non-positive duration",
			req: SlotRequest{
				RangeStart: date(2025, time.May, 9), RangeEnd: date(2025, time.May, 9),
				Window: window, DurationMinutes: 0,
			},
		},
		{
			name: "end date before start date",
			req: SlotRequest{
				RangeStart: date(2025, time.May, 10), RangeEnd: date(2025, time.May, 9),
				Window: window, DurationMinutes: 60,
			},
		},
		{
			name: "inverted window",
			req: SlotRequest{
				RangeStart: date(2025, time.May, 9), RangeEnd: date(2025, time.May, 9),
				Window: DayWindow{Start: window.End, End: window.Start}, DurationMinutes: 60,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, appErr := GenerateSlots(tt.req)
			if appErr == nil {
				t.Fatal("expected validation error, got none")
			}
			if appErr.Code != errors.ErrInvalidInput {
				t.Errorf("code = %s, want %s", appErr.Code, errors.ErrInvalidInput)
			}
			if slots != nil {
				t.Errorf("expected no slots on invalid request, got %d", len(slots))
			}
		})
	}
}

func TestGenerateSlots_CoverageProperty(t *testing.T) {
	// For any valid request over N days with a W minute window and D minute
	// duration, the generator emits exactly N * floor(W/D) slots.
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		days := rng.Intn(14) + 1
		startMin := rng.Intn(12 * 60)              // window opens 00:00-11:59
		windowLen := rng.Intn(10*60) + 15          // 15 min to 10 h 14 min
		duration := rng.Intn(120) + 1              // 1-120 min
		start := date(2025, time.May, 1+rng.Intn(10))

		req := SlotRequest{
			RangeStart:      start,
			RangeEnd:        start.AddDate(0, 0, days-1),
			Window:          DayWindow{Start: TimeOfDay(startMin), End: TimeOfDay(startMin + windowLen)},
			DurationMinutes: duration,
		}

		slots, appErr := GenerateSlots(req)
		if appErr != nil {
			t.Fatalf("case %d: unexpected error: %v", i, appErr)
		}

		want := days * (windowLen / duration)
		if len(slots) != want {
			t.Fatalf("case %d: days=%d window=%d dur=%d: got %d slots, want %d",
				i, days, windowLen, duration, len(slots), want)
		}
	}
}

func TestGenerateSlots_ConsecutiveSlotsAreAdjacent(t *testing.T) {
	req := SlotRequest{
		RangeStart:      date(2025, time.May, 9),
		RangeEnd:        date(2025, time.May, 11),
		Window:          mustWindow(t, "09:00", "17:00"),
		DurationMinutes: 45,
	}

	slots, appErr := GenerateSlots(req)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}

	for i := 1; i < len(slots); i++ {
		prev, cur := slots[i-1], slots[i]
		if !cur.Date.Equal(prev.Date) {
			if !cur.Date.After(prev.Date) {
				t.Fatalf("slot %d: dates out of order", i)
			}
			continue
		}
		if !prev.Interval.End.Equal(cur.Interval.Start) {
			t.Fatalf("slot %d: expected back-to-back tiling, gap between %s and %s",
				i, prev.Interval.End, cur.Interval.Start)
		}
	}
}

func TestGenerateSlots_TimeOfDayIgnoredOnRangeDates(t *testing.T) {
	// Range endpoints may arrive with a time-of-day component; only the
	// calendar date matters.
	req := SlotRequest{
		RangeStart:      time.Date(2025, time.May, 9, 13, 45, 12, 0, time.UTC),
		RangeEnd:        time.Date(2025, time.May, 9, 2, 0, 0, 0, time.UTC),
		Window:          mustWindow(t, "09:00", "11:00"),
		DurationMinutes: 60,
	}

	slots, appErr := GenerateSlots(req)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != TimeOfDay(9*60+30) {
		t.Errorf("got %d, want %d", got, 9*60+30)
	}
	if got.String() != "09:30" {
		t.Errorf("String() = %q, want %q", got.String(), "09:30")
	}

	if _, err := ParseTimeOfDay("25:00"); err == nil {
		t.Error("expected error for 25:00")
	}
	if _, err := ParseTimeOfDay("not-a-time"); err == nil {
		t.Error("expected error for garbage input")
	}
}
