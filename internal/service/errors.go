package service

import "errors"

// Validation errors, reported as 400.
var (
	ErrBadRequest              = errors.New("bad request")
	ErrInvalidEmail            = errors.New("invalid email")
	ErrWeakPassword            = errors.New("password does not meet policy")
	ErrInvalidStatusTransition = errors.New("invalid issue status transition")
	ErrInvalidIssueSource      = errors.New("invalid issue source")
	ErrCaptchaRequired         = errors.New("captcha required")
	ErrCaptchaInvalid          = errors.New("captcha invalid")
	ErrResetTokenInvalid       = errors.New("reset token invalid or expired")
	ErrFileTooLarge            = errors.New("file too large")
	ErrInvalidFileType         = errors.New("file type not allowed")
)

// Authentication errors, reported as 401.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenMissing       = errors.New("token missing")
	ErrTokenInvalid       = errors.New("token invalid or expired")
	ErrTokenRevoked       = errors.New("token revoked")
)

// Authorization conflicts, reported as 403.
var (
	ErrDeviceConflict = errors.New("admin already logged in on another device")
	ErrAdminExists    = errors.New("admin already exists")
)

// ErrNotFound entity missing, reported as 404.
var ErrNotFound = errors.New("not found")

// Configuration errors, reported as 500.
var (
	ErrJWTSecretMissing          = errors.New("jwt secret not configured")
	ErrCaptchaConfigInvalid      = errors.New("captcha config invalid")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
