package repository

import (
	"errors"
	"time"
)

var (
	// ErrAdminExists the singleton admin row is already present
	ErrAdminExists = errors.New("admin already exists")
	// ErrActiveSessionConflict another device holds the active session
	ErrActiveSessionConflict = errors.New("active session held by another device")
	// ErrSessionNotActive the session was revoked or expired concurrently
	ErrSessionNotActive = errors.New("session is not active")
)

// AuditTrailListFilter audit trail list filters
type AuditTrailListFilter struct {
	Page        int
	PageSize    int
	Endpoint    string
	ActorModel  string
	ActorUserID uint
	IPAddress   string
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// IssueListFilter issue list filters
type IssueListFilter struct {
	Page            int
	PageSize        int
	Status          string
	Source          string
	MalpracticeType string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// SessionActivation a new session to install for an admin
type SessionActivation struct {
	AdminID     uint
	SessionHash string
	DeviceID    string
	UserAgent   string
	IPAddress   string
	ExpiresAt   time.Time
	Now         time.Time
}
