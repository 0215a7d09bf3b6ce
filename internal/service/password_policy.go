package service

import (
	"strings"
	"unicode"

	"github.com/whistledesk/internal/config"
)

// bcrypt only reads the first 72 bytes of its input.
const maxPasswordBytes = 72

// passwordPolicyError carries an i18n key so handlers can render the exact rule broken.
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func (e passwordPolicyError) Key() string {
	return e.key
}

func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

// validatePassword checks password against policy. email, when given, must not appear in it.
func validatePassword(policy config.PasswordPolicyConfig, password, email string) error {
	if len(password) > maxPasswordBytes {
		return passwordPolicyError{key: "error.password_max_length", args: []interface{}{maxPasswordBytes}}
	}
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	switch {
	case policy.RequireUpper && !hasUpper:
		return passwordPolicyError{key: "error.password_require_upper"}
	case policy.RequireLower && !hasLower:
		return passwordPolicyError{key: "error.password_require_lower"}
	case policy.RequireNumber && !hasNumber:
		return passwordPolicyError{key: "error.password_require_number"}
	case policy.RequireSpecial && !hasSpecial:
		return passwordPolicyError{key: "error.password_require_special"}
	}

	if local := emailLocalPart(email); len(local) >= 4 && strings.Contains(strings.ToLower(password), local) {
		return passwordPolicyError{key: "error.password_contains_email"}
	}
	return nil
}

func emailLocalPart(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if idx := strings.Index(normalized, "@"); idx > 0 {
		return normalized[:idx]
	}
	return ""
}
