package models

import (
	"time"
)

// AdminSingletonGuard is the only value the singleton column accepts.
const AdminSingletonGuard = 1

// Admin portal administrator
type Admin struct {
	ID                     uint       `gorm:"primarykey" json:"id"`                                // primary key
	Email                  string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // login email
	FullName               string     `gorm:"type:varchar(255);not null" json:"full_name"`         // display name
	PasswordHash           string     `gorm:"not null" json:"-"`                                   // bcrypt hash
	Singleton              int        `gorm:"not null;default:1;uniqueIndex" json:"-"`             // one-admin guard
	LastLoginAt            *time.Time `json:"last_login_at"`                                       // last successful login
	ResetPasswordTokenHash string     `gorm:"type:varchar(255);index" json:"-"`                    // bcrypt hash of the reset token
	ResetPasswordExpiresAt *time.Time `json:"-"`                                                   // reset token deadline
	CreatedAt              time.Time  `gorm:"index" json:"created_at"`                             // created
	UpdatedAt              time.Time  `json:"updated_at"`                                          // updated
}

// TableName table name
func (Admin) TableName() string {
	return "admins"
}

// HasPendingReset reports whether a reset token is outstanding.
func (a *Admin) HasPendingReset() bool {
	return a != nil && a.ResetPasswordTokenHash != ""
}
