package entity

import (
	"time"

	"meetsync/core/entity"
)

// User is a minimal account: enough to organize meetings and hold calendar
// connections. Google-only users carry no password hash.
type User struct {
	entity.BaseEntity
	Email           string     `db:"email" json:"email"`
	Name            string     `db:"name" json:"name"`
	Password        string     `db:"password" json:"-"`
	GoogleID        *string    `db:"google_id" json:"-"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"email_verified_at"`
	IsActive        bool       `db:"is_active" json:"is_active"`
}

func (User) TableName() string {
	return "users"
}
