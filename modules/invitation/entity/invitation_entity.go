package entity

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// MeetingInvitation is one invitee's link to a meeting. The token is the only
// credential a participant needs to view and respond, so invitees do not have
// to hold an account. Re-inviting the same email rotates the token and resets
// the status to pending.
type MeetingInvitation struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	MeetingID   uuid.UUID        `db:"meeting_id" json:"meeting_id"`
	Email       string           `db:"email" json:"email"`
	Token       string           `db:"token" json:"token"`
	ShareSlug   string           `db:"share_slug" json:"share_slug"`
	Status      InvitationStatus `db:"status" json:"status"`
	RespondedAt *time.Time       `db:"responded_at" json:"responded_at"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// ShareLink is the public join path for this invitation.
func (i *MeetingInvitation) ShareLink() string {
	return "/join/" + i.ShareSlug + "-" + i.Token
}
