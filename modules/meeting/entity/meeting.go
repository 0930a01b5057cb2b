package entity

import (
	"time"

	"github.com/google/uuid"

	"meetsync/modules/meeting/engine"
)

// MeetingStatus is the lifecycle state of a meeting.
type MeetingStatus string

const (
	MeetingStatusPending   MeetingStatus = "pending"
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// Meeting is the scheduling aggregate. Version backs the optimistic lock on
// status transitions: every successful update increments it, and writers CAS
// on the value they loaded.
type Meeting struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	OrganizerEmail  string        `db:"organizer_email" json:"organizer_email"`
	Title           string        `db:"title" json:"title"`
	RangeStart      time.Time     `db:"range_start" json:"range_start"`
	RangeEnd        time.Time     `db:"range_end" json:"range_end"`
	WindowStart     string        `db:"window_start" json:"window_start"` // "15:04"
	WindowEnd       string        `db:"window_end" json:"window_end"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	Status          MeetingStatus `db:"status" json:"status"`
	ScheduledStart  *time.Time    `db:"scheduled_start" json:"scheduled_start,omitempty"`
	ScheduledEnd    *time.Time    `db:"scheduled_end" json:"scheduled_end,omitempty"`
	Version         int           `db:"version" json:"version"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// SlotRequest builds the engine request from the stored constraints.
func (m *Meeting) SlotRequest() (engine.SlotRequest, error) {
	windowStart, err := engine.ParseTimeOfDay(m.WindowStart)
	if err != nil {
		return engine.SlotRequest{}, err
	}
	windowEnd, err := engine.ParseTimeOfDay(m.WindowEnd)
	if err != nil {
		return engine.SlotRequest{}, err
	}

	return engine.SlotRequest{
		RangeStart:      m.RangeStart,
		RangeEnd:        m.RangeEnd,
		Window:          engine.DayWindow{Start: windowStart, End: windowEnd},
		DurationMinutes: m.DurationMinutes,
	}, nil
}
