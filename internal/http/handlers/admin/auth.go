package admin

import (
	"errors"
	"strings"

	"github.com/whistledesk/internal/constants"
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/i18n"
	"github.com/whistledesk/internal/service"

	"github.com/gin-gonic/gin"
)

var forgotPasswordErrorRules = handlershared.ConcatMappedHandlerErrors(
	handlershared.CaptchaErrorRules,
	handlershared.PasswordResetErrorRules,
)

// SignupRequest first admin creation
type SignupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
	Browser  string `json:"browser"`
}

// LoginRequest admin login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
	Browser  string `json:"browser"`
}

// DeviceRequest optional device context sent by session endpoints
type DeviceRequest struct {
	DeviceID string `json:"deviceId"`
	Browser  string `json:"browser"`
}

// ForgotPasswordRequest reset link request
type ForgotPasswordRequest struct {
	Email          string                              `json:"email"`
	DeviceID       string                              `json:"deviceId"`
	Browser        string                              `json:"browser"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// ResetPasswordRequest redeem a reset token
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
	DeviceID    string `json:"deviceId"`
	Browser     string `json:"browser"`
}

// SessionResponse issued credential
type SessionResponse struct {
	FullName  string `json:"fullName"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// Signup creates the single admin account
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectMalformed(c, constants.ActivitySignupFailed)
		return
	}
	meta := handlershared.RequestMeta(c, req.Browser, req.DeviceID)
	admin, err := h.AuthService.Signup(service.SignupInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	}, meta)
	if err != nil {
		respondWithMappedError(c, err, handlershared.AuthErrorRules)
		return
	}
	response.Created(c, i18n.T(meta.Locale, "auth.signup_success"), gin.H{
		"email":    admin.Email,
		"fullName": admin.FullName,
	})
}

// Login authenticates and binds the session to the requesting device
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectMalformed(c, constants.ActivityLoginFailed)
		return
	}
	meta := handlershared.RequestMeta(c, req.Browser, req.DeviceID)
	result, err := h.AuthService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		DeviceID: req.DeviceID,
	}, meta)
	if err != nil {
		respondWithMappedError(c, err, handlershared.AuthErrorRules)
		return
	}
	handlershared.SetTokenCookie(c, h.Config.Cookie, result.Token)
	response.SuccessWithMsg(c, i18n.T(meta.Locale, "auth.login_success"), sessionResponse(result))
}

// Logout revokes the caller's session
func (h *Handler) Logout(c *gin.Context) {
	var req DeviceRequest
	_ = c.ShouldBindJSON(&req)
	meta := handlershared.RequestMeta(c, req.Browser, req.DeviceID)
	token, ok := h.bearerToken(c, meta, constants.ActivityLogoutFailed)
	if !ok {
		return
	}
	if err := h.AuthService.Logout(c.Request.Context(), token, meta); err != nil {
		respondWithMappedError(c, err, handlershared.AuthErrorRules)
		return
	}
	handlershared.ClearTokenCookie(c, h.Config.Cookie)
	response.SuccessWithMsg(c, i18n.T(meta.Locale, "auth.logout_success"), nil)
}

// CheckSession reports who the bearer credential belongs to
func (h *Handler) CheckSession(c *gin.Context) {
	meta := handlershared.RequestMeta(c, "", "")
	token, ok := h.bearerToken(c, meta, constants.ActivityCheckSessionFailed)
	if !ok {
		return
	}
	claims, err := h.AuthService.CheckSession(c.Request.Context(), token, meta)
	if err != nil {
		respondWithMappedError(c, err, handlershared.AuthErrorRules)
		return
	}
	response.SuccessWithMsg(c, i18n.T(meta.Locale, "auth.session_valid"), gin.H{
		"email": claims.Email,
		"role":  claims.Role,
	})
}

// RegenerateSession rotates the bearer credential on the same device
func (h *Handler) RegenerateSession(c *gin.Context) {
	var req DeviceRequest
	_ = c.ShouldBindJSON(&req)
	meta := handlershared.RequestMeta(c, req.Browser, req.DeviceID)
	token, ok := h.bearerToken(c, meta, constants.ActivityRegenerateFailed)
	if !ok {
		return
	}
	result, err := h.AuthService.Regenerate(c.Request.Context(), token, meta)
	if err != nil {
		respondWithMappedError(c, err, handlershared.AuthErrorRules)
		return
	}
	handlershared.SetTokenCookie(c, h.Config.Cookie, result.Token)
	response.SuccessWithMsg(c, i18n.T(meta.Locale, "auth.session_regenerated"), sessionResponse(result))
}

// ForgotPassword answers identically whether or not the email is known
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectMalformed(c, constants.ActivityForgotPasswordFailed)
		return
	}
	meta := handlershared.RequestMeta(c, req.Browser, req.DeviceID)
	if err := h.CaptchaService.Verify(constants.CaptchaSceneForgotPassword, req.CaptchaPayload.ToServicePayload()); err != nil {
		h.recordRejected(meta, constants.ActivityForgotPasswordFailed, req.Email, captchaRejectReason(err))
		respondWithMappedError(c, err, forgotPasswordErrorRules)
		return
	}
	if err := h.PasswordResetService.Forgot(req.Email, meta); err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(meta.Locale, "auth.forgot_password_sent"), nil)
}

// ResetPassword redeems a reset token
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectMalformed(c, constants.ActivityResetPasswordFailed)
		return
	}
	meta := handlershared.RequestMeta(c, req.Browser, req.DeviceID)
	err := h.PasswordResetService.Reset(c.Request.Context(), service.ResetPasswordInput{
		Email:       req.Email,
		Token:       strings.TrimSpace(req.Token),
		NewPassword: req.NewPassword,
	}, meta)
	if err != nil {
		respondWithMappedError(c, err, handlershared.PasswordResetErrorRules)
		return
	}
	response.SuccessWithMsg(c, i18n.T(meta.Locale, "auth.reset_password_success"), nil)
}

// rejectMalformed answers and audits a body that could not be decoded
func (h *Handler) rejectMalformed(c *gin.Context, activity string) {
	h.recordRejected(handlershared.RequestMeta(c, "", ""), activity, "", "bad_request")
	respondError(c, response.CodeBadRequest, "error.bad_request", nil)
}

func captchaRejectReason(err error) string {
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		return "captcha_required"
	case errors.Is(err, service.ErrCaptchaInvalid):
		return "captcha_invalid"
	default:
		return "captcha_unavailable"
	}
}

func sessionResponse(result *service.LoginResult) SessionResponse {
	return SessionResponse{
		FullName:  result.Admin.FullName,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
