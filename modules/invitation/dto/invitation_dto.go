package dto

import (
	"time"

	"github.com/google/uuid"
)

// RespondRequest is a public response to an invitation token.
type RespondRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

// InvitationResponse describes one invitation.
type InvitationResponse struct {
	ID          uuid.UUID  `json:"id"`
	MeetingID   uuid.UUID  `json:"meeting_id"`
	Email       string     `json:"email"`
	Status      string     `json:"status"`
	ShareLink   string     `json:"share_link"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// JoinViewResponse is what an invitee sees when opening a share link. It
// carries just enough meeting context to respond without an account.
type JoinViewResponse struct {
	Invitation InvitationResponse `json:"invitation"`
	Meeting    JoinMeetingView    `json:"meeting"`
}

// JoinMeetingView is the public projection of a meeting.
type JoinMeetingView struct {
	Title           string     `json:"title"`
	OrganizerEmail  string     `json:"organizer_email"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	WindowStart     string     `json:"window_start"`
	WindowEnd       string     `json:"window_end"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	ScheduledStart  *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd    *time.Time `json:"scheduled_end,omitempty"`
}

// PendingInvitationsResponse lists pending invitations for a user.
type PendingInvitationsResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
	Total       int                  `json:"total"`
}
