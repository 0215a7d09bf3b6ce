package constants

// Issue status constants
const (
	IssueStatusSubmitted     = "submitted"
	IssueStatusInvestigating = "investigating"
	IssueStatusResponded     = "responded"
	IssueStatusResolved      = "resolved"
)

// Issue source constants
const (
	IssueSourceWeb  = "web"
	IssueSourceUSSD = "ussd"
)

// Audit actor model constants
const (
	ActorModelAdmin    = "Admin"
	ActorModelReporter = "Reporter"
)

// Role constants
const (
	RoleAdmin    = "admin"
	RoleReporter = "reporter"
)

// Session revoke reason constants
const (
	SessionRevokeLogout        = "logout"
	SessionRevokeSuperseded    = "superseded"
	SessionRevokeRotated       = "rotated"
	SessionRevokeExpired       = "expired"
	SessionRevokePasswordReset = "password_reset"
)

// Audit activity constants
const (
	ActivitySignupSuccess          = "Admin signup successful"
	ActivitySignupBlocked          = "Admin signup blocked: admin already exists"
	ActivitySignupFailed           = "Admin signup failed"
	ActivityLoginAdminNotFound     = "Login failed: admin not found"
	ActivityLoginWrongPassword     = "Login failed: wrong password"
	ActivityLoginDeviceConflict    = "Login failed: already logged in on another device"
	ActivityLoginSuccess           = "Login successful"
	ActivityLoginFailed            = "Login failed"
	ActivityLogoutSuccess          = "Logout successful"
	ActivityLogoutFailed           = "Logout failed"
	ActivityCheckSessionSuccess    = "Session check successful"
	ActivityCheckSessionFailed     = "Session check failed"
	ActivityRegenerateSuccess      = "Session regenerated"
	ActivityRegenerateFailed       = "Session regeneration failed"
	ActivityForgotPasswordNotFound = "Forgot password: admin not found"
	ActivityForgotPasswordSent     = "Forgot password: reset link sent"
	ActivityForgotPasswordFailed   = "Forgot password failed"
	ActivityResetPasswordSuccess   = "Password reset successful"
	ActivityResetPasswordExpired   = "Password reset failed: token expired"
	ActivityResetPasswordInvalid   = "Password reset failed: invalid token"
	ActivityResetPasswordFailed    = "Password reset failed"
	ActivityIssueSubmitted         = "Issue submitted"
	ActivityIssueStatusChanged     = "Issue status changed"
	ActivityIssueResponded         = "Issue response added"
	ActivityAuthzPolicyGranted     = "Authorization policy granted"
	ActivityAuthzPolicyRevoked     = "Authorization policy revoked"
	ActivityAuthzPolicyReloaded    = "Authorization policy reloaded"
)

// Captcha provider constants
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// Captcha scene constants
const (
	CaptchaSceneIssueSubmit    = "issue_submit"
	CaptchaSceneForgotPassword = "forgot_password"
)

// Queue constants
const (
	QueueDefault           = "default"
	QueueCritical          = "critical"
	TaskPasswordResetEmail = "email:password_reset"
	TaskIssueStatusEmail   = "email:issue_status"
)

// Cache constants
const (
	RedisPrefixDefault = "wd"
)

// Locale constants
const (
	LocaleEN = "en"
	LocaleSW = "sw"
)

// SupportedLocales in fallback order.
var SupportedLocales = []string{LocaleEN, LocaleSW}

// Request context constants
const (
	UnknownIPAddress = "unknown"
	HeaderDeviceID   = "X-Device-ID"
)
