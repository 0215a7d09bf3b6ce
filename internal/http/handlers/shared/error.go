package shared

import (
	"errors"

	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/i18n"
	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog logger bound to the request id
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get(ContextKeyRequestID); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError localized error envelope; the raw error is logged, never returned
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	RespondErrorWithMsg(c, code, msg, err)
}

// RespondErrorWithMsg error envelope with a preformatted message
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// MappedHandlerError maps a service error onto a status and message key
type MappedHandlerError struct {
	Target error
	Code   int
	Key    string
}

// RespondWithMappedError answers with the first matching rule, or the fallback.
// Password policy violations are rendered with their own arguments.
func RespondWithMappedError(c *gin.Context, err error, rules []MappedHandlerError, fallbackCode int, fallbackKey string) {
	if errors.Is(err, service.ErrWeakPassword) {
		respondPasswordPolicy(c, err)
		return
	}
	if rule, ok := LookupMappedError(err, rules); ok {
		RespondError(c, rule.Code, rule.Key, nil)
		return
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// LookupMappedError returns the first rule matching err
func LookupMappedError(err error, rules []MappedHandlerError) (MappedHandlerError, bool) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			return rule, true
		}
	}
	return MappedHandlerError{}, false
}

// ConcatMappedHandlerErrors joins rule groups in order
func ConcatMappedHandlerErrors(groups ...[]MappedHandlerError) []MappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

func respondPasswordPolicy(c *gin.Context, err error) {
	var perr interface {
		Key() string
		Args() []interface{}
	}
	if errors.As(err, &perr) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), perr.Key(), perr.Args()...)
		RespondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
}

// AuthErrorRules credential and session failures
var AuthErrorRules = []MappedHandlerError{
	{Target: service.ErrBadRequest, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrTokenMissing, Code: response.CodeUnauthorized, Key: "error.token_missing"},
	{Target: service.ErrTokenInvalid, Code: response.CodeUnauthorized, Key: "error.token_invalid"},
	{Target: service.ErrTokenRevoked, Code: response.CodeUnauthorized, Key: "error.token_revoked"},
	{Target: service.ErrDeviceConflict, Code: response.CodeForbidden, Key: "error.device_conflict"},
	{Target: service.ErrAdminExists, Code: response.CodeForbidden, Key: "error.admin_exists"},
	{Target: service.ErrJWTSecretMissing, Code: response.CodeInternal, Key: "error.jwt_secret_missing"},
}

// PasswordResetErrorRules reset flow failures
var PasswordResetErrorRules = []MappedHandlerError{
	{Target: service.ErrBadRequest, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrResetTokenInvalid, Code: response.CodeBadRequest, Key: "error.reset_token_invalid"},
}

// CaptchaErrorRules captcha verification failures
var CaptchaErrorRules = []MappedHandlerError{
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrCaptchaConfigInvalid, Code: response.CodeInternal, Key: "error.captcha_config_invalid"},
}

// IssueErrorRules issue intake and lifecycle failures
var IssueErrorRules = []MappedHandlerError{
	{Target: service.ErrBadRequest, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrInvalidIssueSource, Code: response.CodeBadRequest, Key: "error.issue_source_invalid"},
	{Target: service.ErrInvalidStatusTransition, Code: response.CodeBadRequest, Key: "error.status_transition"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.issue_not_found"},
	{Target: service.ErrFileTooLarge, Code: response.CodeBadRequest, Key: "error.file_too_large"},
	{Target: service.ErrInvalidFileType, Code: response.CodeBadRequest, Key: "error.file_type_invalid"},
}
