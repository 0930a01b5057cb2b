package engine

import "sort"

// ParticipantAvailability is one invited participant's busy data for the
// meeting's date range. HasResponded tracks whether the participant has ever
// submitted availability; it is independent of the invitation response.
type ParticipantAvailability struct {
	ParticipantID string         `json:"participant_id"`
	BusyIntervals []TimeInterval `json:"busy_intervals"`
	HasResponded  bool           `json:"has_responded"`
}

// AnnotatedSlot is a candidate slot with its availability counts. Derived data:
// rebuilt whenever inputs change, never mutated in place. The organizer is
// tracked separately and never counted in TotalParticipants.
type AnnotatedSlot struct {
	Slot              CandidateSlot `json:"slot"`
	AvailableCount    int           `json:"available_count"`
	TotalParticipants int           `json:"total_participants"`
	OrganizerConflict bool          `json:"organizer_conflict"`
}

// Aggregate annotates every slot with the number of invited participants free
// for it, and whether the organizer's own calendar conflicts. Pure and
// idempotent over its inputs.
func Aggregate(slots []CandidateSlot, participants []ParticipantAvailability, organizerBusy []TimeInterval) []AnnotatedSlot {
	// Sort each busy set once so the per-slot conflict check can terminate early.
	sortedBusy := make([][]TimeInterval, len(participants))
	for i, p := range participants {
		busy := make([]TimeInterval, len(p.BusyIntervals))
		copy(busy, p.BusyIntervals)
		SortIntervals(busy)
		sortedBusy[i] = busy
	}

	orgBusy := make([]TimeInterval, len(organizerBusy))
	copy(orgBusy, organizerBusy)
	SortIntervals(orgBusy)

	annotated := make([]AnnotatedSlot, 0, len(slots))
	for _, slot := range slots {
		available := 0
		for i := range participants {
			if !hasConflictSorted(slot, sortedBusy[i]) {
				available++
			}
		}

		annotated = append(annotated, AnnotatedSlot{
			Slot:              slot,
			AvailableCount:    available,
			TotalParticipants: len(participants),
			OrganizerConflict: hasConflictSorted(slot, orgBusy),
		})
	}

	return annotated
}

// Rank returns a new slice ordered by available count descending, then date
// ascending, then start time ascending, so repeated runs over identical input
// produce identical output.
func Rank(slots []AnnotatedSlot) []AnnotatedSlot {
	ranked := make([]AnnotatedSlot, len(slots))
	copy(ranked, slots)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.AvailableCount != b.AvailableCount {
			return a.AvailableCount > b.AvailableCount
		}
		if !a.Slot.Date.Equal(b.Slot.Date) {
			return a.Slot.Date.Before(b.Slot.Date)
		}
		return a.Slot.Interval.Start.Before(b.Slot.Interval.Start)
	})

	return ranked
}
