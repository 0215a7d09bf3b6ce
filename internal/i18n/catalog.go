package i18n

import "github.com/whistledesk/internal/constants"

var catalog = map[string]map[string]string{
	constants.LocaleEN: {
		"common.success":                 "success",
		"auth.signup_success":            "Admin account created",
		"auth.login_success":             "Login successful",
		"auth.logout_success":            "Logout successful",
		"auth.session_valid":             "Session is valid",
		"auth.session_regenerated":       "Session regenerated",
		"auth.forgot_password_sent":      "If an account with that email exists, a password reset link has been sent.",
		"auth.reset_password_success":    "Password has been reset",
		"issue.submitted":                "Issue submitted",
		"issue.status_updated":           "Issue status updated",
		"issue.response_added":           "Response added",
		"error.bad_request":              "Invalid request parameters",
		"error.email_invalid":            "Invalid email address",
		"error.invalid_credentials":      "Invalid credentials",
		"error.device_conflict":          "Admin is already logged in on another device",
		"error.admin_exists":             "An admin account already exists",
		"error.token_missing":            "Authentication token is missing",
		"error.token_invalid":            "Invalid or expired token",
		"error.token_revoked":            "Session has been revoked",
		"error.auth_header_invalid":      "Invalid authorization header",
		"error.jwt_secret_missing":       "Server authentication is not configured",
		"error.unauthorized":             "Unauthorized",
		"error.forbidden":                "Forbidden",
		"error.not_found":                "Resource not found",
		"error.issue_not_found":          "Issue not found",
		"error.reset_token_invalid":      "Password reset token is invalid or expired",
		"error.status_transition":        "Invalid issue status transition",
		"error.issue_source_invalid":     "Invalid issue source",
		"error.captcha_required":         "Captcha is required",
		"error.captcha_invalid":          "Captcha is invalid",
		"error.captcha_config_invalid":   "Captcha is not configured correctly",
		"error.email_not_configured":     "Email service is not configured",
		"error.upload_failed":            "File upload failed",
		"error.file_too_large":           "File is too large",
		"error.file_type_invalid":        "File type is not allowed",
		"error.too_many_requests":        "Too many requests, please try again later",
		"error.rate_limited":             "Too many requests, try again in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiting is temporarily unavailable",
		"error.internal":                 "Internal server error",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_max_length":      "Password must be at most %d bytes",
		"error.password_contains_email":  "Password must not contain your email name",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"ussd.main_menu":                 "Welcome to the whistleblower line\n1. Report malpractice\n2. Check report status",
		"ussd.ask_type":                  "Enter malpractice type (e.g. fraud, bribery, harassment)",
		"ussd.ask_description":           "Briefly describe what happened",
		"ussd.ask_person":                "Name of the person involved (0 to skip)",
		"ussd.submitted":                 "Thank you. Your report reference is %s",
		"ussd.ask_ref":                   "Enter your report reference",
		"ussd.status":                    "Report %s status: %s",
		"ussd.not_found":                 "No report found with that reference",
		"ussd.invalid_option":            "Invalid option",
		"ussd.failed":                    "Service unavailable, please try again later",
		"email.reset_subject":            "Password reset request",
		"email.reset_body":               "A password reset was requested for your admin account.\n\nOpen the link below within %d minutes to choose a new password:\n%s\n\nIf you did not request this, ignore this email.",
		"email.issue_status_subject":     "Update on your report %s",
		"email.issue_status_body":        "Your report %s is now %s.\n\n%s",
	},
	constants.LocaleSW: {
		"common.success":                 "imefanikiwa",
		"auth.signup_success":            "Akaunti ya msimamizi imeundwa",
		"auth.login_success":             "Umeingia kikamilifu",
		"auth.logout_success":            "Umetoka kikamilifu",
		"auth.session_valid":             "Kipindi ni halali",
		"auth.session_regenerated":       "Kipindi kimesasishwa",
		"auth.forgot_password_sent":      "Ikiwa akaunti yenye barua pepe hiyo ipo, kiungo cha kubadilisha nenosiri kimetumwa.",
		"auth.reset_password_success":    "Nenosiri limebadilishwa",
		"issue.submitted":                "Ripoti imetumwa",
		"issue.status_updated":           "Hali ya ripoti imesasishwa",
		"issue.response_added":           "Jibu limeongezwa",
		"error.bad_request":              "Vigezo vya ombi si sahihi",
		"error.email_invalid":            "Barua pepe si sahihi",
		"error.invalid_credentials":      "Taarifa za kuingia si sahihi",
		"error.device_conflict":          "Msimamizi tayari ameingia kwenye kifaa kingine",
		"error.admin_exists":             "Akaunti ya msimamizi tayari ipo",
		"error.token_missing":            "Tokeni ya uthibitishaji haipo",
		"error.token_invalid":            "Tokeni si halali au imeisha muda",
		"error.token_revoked":            "Kipindi kimebatilishwa",
		"error.auth_header_invalid":      "Kichwa cha uthibitishaji si sahihi",
		"error.jwt_secret_missing":       "Uthibitishaji wa seva haujasanidiwa",
		"error.unauthorized":             "Hujaruhusiwa",
		"error.forbidden":                "Imekatazwa",
		"error.not_found":                "Rasilimali haikupatikana",
		"error.issue_not_found":          "Ripoti haikupatikana",
		"error.reset_token_invalid":      "Tokeni ya kubadilisha nenosiri si halali au imeisha muda",
		"error.status_transition":        "Mabadiliko ya hali ya ripoti hayaruhusiwi",
		"error.issue_source_invalid":     "Chanzo cha ripoti si sahihi",
		"error.captcha_required":         "Captcha inahitajika",
		"error.captcha_invalid":          "Captcha si sahihi",
		"error.captcha_config_invalid":   "Captcha haijasanidiwa ipasavyo",
		"error.email_not_configured":     "Huduma ya barua pepe haijasanidiwa",
		"error.upload_failed":            "Kupakia faili kumeshindikana",
		"error.file_too_large":           "Faili ni kubwa mno",
		"error.file_type_invalid":        "Aina ya faili hairuhusiwi",
		"error.too_many_requests":        "Maombi mengi mno, jaribu tena baadaye",
		"error.rate_limited":             "Maombi mengi mno, jaribu tena baada ya sekunde %d",
		"error.rate_limit_unavailable":   "Udhibiti wa maombi haupatikani kwa sasa",
		"error.internal":                 "Hitilafu ya ndani ya seva",
		"error.password_min_length":      "Nenosiri lazima liwe na angalau herufi %d",
		"error.password_max_length":      "Nenosiri lisizidi baiti %d",
		"error.password_contains_email":  "Nenosiri lisiwe na jina la barua pepe yako",
		"error.password_require_upper":   "Nenosiri lazima liwe na herufi kubwa",
		"error.password_require_lower":   "Nenosiri lazima liwe na herufi ndogo",
		"error.password_require_number":  "Nenosiri lazima liwe na namba",
		"error.password_require_special": "Nenosiri lazima liwe na alama maalum",
		"ussd.main_menu":                 "Karibu kwenye laini ya kutoa taarifa\n1. Ripoti ukiukaji\n2. Angalia hali ya ripoti",
		"ussd.ask_type":                  "Weka aina ya ukiukaji (mfano rushwa, ulaghai, unyanyasaji)",
		"ussd.ask_description":           "Eleza kwa ufupi kilichotokea",
		"ussd.ask_person":                "Jina la mhusika (0 kuruka)",
		"ussd.submitted":                 "Asante. Namba ya ripoti yako ni %s",
		"ussd.ask_ref":                   "Weka namba ya ripoti yako",
		"ussd.status":                    "Ripoti %s hali: %s",
		"ussd.not_found":                 "Hakuna ripoti yenye namba hiyo",
		"ussd.invalid_option":            "Chaguo si sahihi",
		"ussd.failed":                    "Huduma haipatikani, jaribu tena baadaye",
	},
}
