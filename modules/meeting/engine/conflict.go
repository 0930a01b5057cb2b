package engine

// HasConflict reports whether any busy interval overlaps the slot. Works on
// unsorted input; on input sorted by start time it stops at the first busy
// interval beginning at or after the slot's end.
func HasConflict(slot CandidateSlot, busy []TimeInterval) bool {
	return hasConflict(slot, busy, false)
}

// hasConflictSorted assumes busy is ordered by start time.
func hasConflictSorted(slot CandidateSlot, busy []TimeInterval) bool {
	return hasConflict(slot, busy, true)
}

func hasConflict(slot CandidateSlot, busy []TimeInterval, sorted bool) bool {
	for _, b := range busy {
		if sorted && !b.Start.Before(slot.Interval.End) {
			return false
		}
		if Overlaps(slot.Interval, b) {
			return true
		}
	}
	return false
}
