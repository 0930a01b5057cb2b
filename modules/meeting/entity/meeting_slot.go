package entity

import (
	"time"

	"github.com/google/uuid"

	"meetsync/modules/meeting/engine"
)

// MeetingSlot is a persisted annotated slot from the latest aggregation run.
// Rows are replaced wholesale on each recompute, never edited in place.
type MeetingSlot struct {
	ID                uuid.UUID `db:"id" json:"id"`
	MeetingID         uuid.UUID `db:"meeting_id" json:"meeting_id"`
	SlotDate          time.Time `db:"slot_date" json:"slot_date"`
	StartTime         time.Time `db:"start_time" json:"start_time"`
	EndTime           time.Time `db:"end_time" json:"end_time"`
	AvailableCount    int       `db:"available_count" json:"available_count"`
	TotalParticipants int       `db:"total_participants" json:"total_participants"`
	OrganizerConflict bool      `db:"organizer_conflict" json:"organizer_conflict"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Annotated converts the stored row back to the engine's shape.
func (s *MeetingSlot) Annotated() engine.AnnotatedSlot {
	return engine.AnnotatedSlot{
		Slot: engine.CandidateSlot{
			Date:     s.SlotDate,
			Interval: engine.TimeInterval{Start: s.StartTime, End: s.EndTime},
		},
		AvailableCount:    s.AvailableCount,
		TotalParticipants: s.TotalParticipants,
		OrganizerConflict: s.OrganizerConflict,
	}
}

// FromAnnotated builds the persistence row for an annotated slot.
func FromAnnotated(meetingID uuid.UUID, a engine.AnnotatedSlot) MeetingSlot {
	return MeetingSlot{
		MeetingID:         meetingID,
		SlotDate:          a.Slot.Date,
		StartTime:         a.Slot.Interval.Start,
		EndTime:           a.Slot.Interval.End,
		AvailableCount:    a.AvailableCount,
		TotalParticipants: a.TotalParticipants,
		OrganizerConflict: a.OrganizerConflict,
	}
}
