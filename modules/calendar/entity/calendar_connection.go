package entity

import (
	"time"

	"meetsync/core/entity"
)

// CalendarConnection stores a user's calendar provider connection, keyed by
// the email that organizes or attends meetings.
type CalendarConnection struct {
	entity.BaseEntity
	OwnerEmail     string    `db:"owner_email" json:"owner_email"`
	Provider       string    `db:"provider" json:"provider"` // "google"
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	CalendarEmail  string    `db:"calendar_email" json:"calendar_email"`
	IsActive       bool      `db:"is_active" json:"is_active"`
}

func (CalendarConnection) TableName() string {
	return "calendar_connections"
}
