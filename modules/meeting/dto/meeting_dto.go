package dto

import (
	"time"

	"meetsync/modules/meeting/engine"
	"meetsync/modules/meeting/entity"
)

// ===================== Request DTOs =====================

// CreateMeetingRequest for creating a new meeting
type CreateMeetingRequest struct {
	Title             string   `json:"title" validate:"required"`
	StartDate         string   `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate           string   `json:"end_date" validate:"required"`   // YYYY-MM-DD
	WindowStart       string   `json:"window_start"`                   // HH:MM, default 09:00
	WindowEnd         string   `json:"window_end"`                     // HH:MM, default 17:00
	DurationMinutes   int      `json:"duration_minutes" validate:"required,min=1"`
	ParticipantEmails []string `json:"participant_emails"`
}

// TimeIntervalDTO is one busy interval in RFC3339.
type TimeIntervalDTO struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// SubmitAvailabilityRequest for a participant's busy intervals
type SubmitAvailabilityRequest struct {
	BusyIntervals []TimeIntervalDTO `json:"busy_intervals"`
}

// ScheduleRequest commits a specific candidate slot. The slot is re-validated
// server side against the current slot set, never trusted from the client.
type ScheduleRequest struct {
	Date      string `json:"date" validate:"required"`       // YYYY-MM-DD
	StartTime string `json:"start_time" validate:"required"` // HH:MM
	EndTime   string `json:"end_time" validate:"required"`   // HH:MM
}

// ===================== Response DTOs =====================

// MeetingResponse for meeting details
type MeetingResponse struct {
	ID              string                `json:"id"`
	OrganizerEmail  string                `json:"organizer_email"`
	Title           string                `json:"title"`
	StartDate       string                `json:"start_date"`
	EndDate         string                `json:"end_date"`
	WindowStart     string                `json:"window_start"`
	WindowEnd       string                `json:"window_end"`
	DurationMinutes int                   `json:"duration_minutes"`
	Status          string                `json:"status"`
	ScheduledStart  *time.Time            `json:"scheduled_start,omitempty"`
	ScheduledEnd    *time.Time            `json:"scheduled_end,omitempty"`
	Participants    []ParticipantResponse `json:"participants,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// ParticipantResponse for participant availability state
type ParticipantResponse struct {
	Email        string `json:"email"`
	HasResponded bool   `json:"has_responded"`
}

// FindSlotsResponse carries the ranked, display-ready slot list.
type FindSlotsResponse struct {
	MeetingID string            `json:"meeting_id"`
	Status    string            `json:"status"`
	Slots     []engine.SlotView `json:"slots"`
}

// ===================== Mapper Functions =====================

// ToMeetingResponse maps entity to DTO
func ToMeetingResponse(m *entity.Meeting, participants []entity.MeetingParticipant) *MeetingResponse {
	resp := &MeetingResponse{
		ID:              m.ID.String(),
		OrganizerEmail:  m.OrganizerEmail,
		Title:           m.Title,
		StartDate:       m.RangeStart.Format("2006-01-02"),
		EndDate:         m.RangeEnd.Format("2006-01-02"),
		WindowStart:     m.WindowStart,
		WindowEnd:       m.WindowEnd,
		DurationMinutes: m.DurationMinutes,
		Status:          string(m.Status),
		ScheduledStart:  m.ScheduledStart,
		ScheduledEnd:    m.ScheduledEnd,
		CreatedAt:       m.CreatedAt,
	}

	for _, p := range participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{
			Email:        p.Email,
			HasResponded: p.HasResponded,
		})
	}

	return resp
}

// ToFindSlotsResponse maps ranked annotated slots through the shared formatter.
func ToFindSlotsResponse(m *entity.Meeting, ranked []engine.AnnotatedSlot) *FindSlotsResponse {
	resp := &FindSlotsResponse{
		MeetingID: m.ID.String(),
		Status:    string(m.Status),
		Slots:     make([]engine.SlotView, 0, len(ranked)),
	}
	for _, a := range ranked {
		resp.Slots = append(resp.Slots, engine.ToSlotView(a))
	}
	return resp
}
