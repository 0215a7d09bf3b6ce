package service

import "strings"

// RequestMeta request context captured once per request for auditing
type RequestMeta struct {
	Browser   string
	IPAddress string
	DeviceID  string
	Endpoint  string
	RequestID string
	Locale    string
}

// AuditActor polymorphic actor reference
type AuditActor struct {
	UserID uint
	Model  string
	Name   string
	Role   string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
