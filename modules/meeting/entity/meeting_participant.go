package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"meetsync/modules/meeting/engine"
)

// IntervalList stores a participant's busy intervals as JSONB.
type IntervalList []engine.TimeInterval

func (l IntervalList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]engine.TimeInterval{})
	}
	return json.Marshal([]engine.TimeInterval(l))
}

func (l *IntervalList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, (*[]engine.TimeInterval)(l))
}

// MeetingParticipant is one invited participant's availability record. The
// participant identity is their email; HasResponded flips on the first
// availability submission and is independent of the invitation response.
type MeetingParticipant struct {
	MeetingID     uuid.UUID    `db:"meeting_id" json:"meeting_id"`
	Email         string       `db:"email" json:"email"`
	BusyIntervals IntervalList `db:"busy_intervals" json:"busy_intervals"`
	HasResponded  bool         `db:"has_responded" json:"has_responded"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// Availability converts the row to the engine's input shape.
func (p *MeetingParticipant) Availability() engine.ParticipantAvailability {
	return engine.ParticipantAvailability{
		ParticipantID: p.Email,
		BusyIntervals: p.BusyIntervals,
		HasResponded:  p.HasResponded,
	}
}
