package models

import "time"

// AuditTrail append-only activity record.
// Rows are never updated or deleted by the application.
type AuditTrail struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Browser       string    `gorm:"type:text" json:"browser"`
	IPAddress     string    `gorm:"type:varchar(64);index" json:"ip_address"`
	DeviceID      string    `gorm:"type:varchar(255)" json:"device_id"`
	Activity      string    `gorm:"type:text;not null" json:"activity"`
	Endpoint      string    `gorm:"type:varchar(255);index" json:"endpoint"`
	ActorUserID   uint      `gorm:"index" json:"actor_user_id"`                // 0 when the actor is unknown
	ActorModel    string    `gorm:"type:varchar(32);index" json:"actor_model"` // Admin / Reporter
	ActorName     string    `gorm:"type:varchar(255)" json:"actor_name"`
	ActorRole     string    `gorm:"type:varchar(32)" json:"actor_role"`
	DataInTransit JSON      `gorm:"type:json" json:"data_in_transit"` // before/after snapshot
	RequestID     string    `gorm:"type:varchar(64);index" json:"request_id"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName table name
func (AuditTrail) TableName() string {
	return "audit_trails"
}
