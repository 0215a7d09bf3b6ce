package models

import "time"

// AdminSession an issued bearer credential bound to one device.
// At most one row per admin has revoked_at NULL.
type AdminSession struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	AdminID      uint       `gorm:"not null;index;uniqueIndex:idx_admin_sessions_active,where:revoked_at IS NULL" json:"admin_id"`
	SessionHash  string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"` // sha256 hex of the token
	DeviceID     string     `gorm:"type:varchar(255);not null" json:"device_id"`
	UserAgent    string     `gorm:"type:text" json:"user_agent"`
	IPAddress    string     `gorm:"type:varchar(64)" json:"ip_address"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	ExpiresAt    time.Time  `gorm:"index;not null" json:"expires_at"`
	RevokedAt    *time.Time `gorm:"index" json:"revoked_at"`
	RevokeReason string     `gorm:"type:varchar(32)" json:"revoke_reason"`
}

// TableName table name
func (AdminSession) TableName() string {
	return "admin_sessions"
}

// Active reports whether the session is unrevoked and unexpired at now.
func (s *AdminSession) Active(now time.Time) bool {
	return s != nil && s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
