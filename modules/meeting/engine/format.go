package engine

import (
	"fmt"
	"math"
)

// AvailabilityBand buckets a slot's availability ratio for display. These are
// presentation thresholds, not engine invariants.
type AvailabilityBand string

const (
	BandHigh   AvailabilityBand = "high"   // ratio >= 0.75
	BandMedium AvailabilityBand = "medium" // ratio >= 0.25
	BandLow    AvailabilityBand = "low"
)

// Percent returns the rounded availability percentage. A meeting with no
// invited participants reports 0 rather than dividing by zero.
func Percent(a AnnotatedSlot) int {
	if a.TotalParticipants == 0 {
		return 0
	}
	return int(math.Round(float64(a.AvailableCount) / float64(a.TotalParticipants) * 100))
}

// Band classifies the slot for conflict highlighting.
func Band(a AnnotatedSlot) AvailabilityBand {
	if a.TotalParticipants == 0 {
		return BandLow
	}
	ratio := float64(a.AvailableCount) / float64(a.TotalParticipants)
	switch {
	case ratio >= 0.75:
		return BandHigh
	case ratio >= 0.25:
		return BandMedium
	default:
		return BandLow
	}
}

// FormatAvailability renders the "N of M available (P%)" label.
func FormatAvailability(a AnnotatedSlot) string {
	return fmt.Sprintf("%d of %d available (%d%%)", a.AvailableCount, a.TotalParticipants, Percent(a))
}

// SlotView is the display-ready projection of an annotated slot. Every surface
// (organizer view, participant view, dashboard) formats through this one
// mapping instead of reimplementing it.
type SlotView struct {
	Date              string           `json:"date"`       // 2006-01-02
	StartTime         string           `json:"start_time"` // 15:04
	EndTime           string           `json:"end_time"`
	DayOfWeek         string           `json:"day_of_week"`
	AvailableCount    int              `json:"available_count"`
	TotalParticipants int              `json:"total_participants"`
	Percent           int              `json:"percent"`
	Label             string           `json:"label"`
	Band              AvailabilityBand `json:"band"`
	OrganizerConflict bool             `json:"organizer_conflict"`
}

// ToSlotView maps an annotated slot to its display fields.
func ToSlotView(a AnnotatedSlot) SlotView {
	return SlotView{
		Date:              a.Slot.Date.Format("2006-01-02"),
		StartTime:         a.Slot.Interval.Start.Format("15:04"),
		EndTime:           a.Slot.Interval.End.Format("15:04"),
		DayOfWeek:         a.Slot.Date.Weekday().String(),
		AvailableCount:    a.AvailableCount,
		TotalParticipants: a.TotalParticipants,
		Percent:           Percent(a),
		Label:             FormatAvailability(a),
		Band:              Band(a),
		OrganizerConflict: a.OrganizerConflict,
	}
}
