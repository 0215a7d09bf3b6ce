package shared

import (
	"strings"

	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/i18n"
	"github.com/whistledesk/internal/service"

	"github.com/gin-gonic/gin"
)

// Context keys set by the router middleware
const (
	ContextKeyRequestID   = "request_id"
	ContextKeyAdminClaims = "admin_claims"
	ContextKeyAdminID     = "admin_id"
	ContextKeyAdminToken  = "admin_token"
)

// RequestMeta builds the audit context once per request.
// browser and deviceID come from the body when the endpoint accepts them.
func RequestMeta(c *gin.Context, browser, deviceID string) service.RequestMeta {
	meta := service.RequestMeta{
		Browser:   strings.TrimSpace(browser),
		IPAddress: ClientIP(c),
		DeviceID:  strings.TrimSpace(deviceID),
		Endpoint:  c.Request.URL.Path,
		Locale:    i18n.ResolveLocale(c),
	}
	if meta.Browser == "" {
		meta.Browser = c.GetHeader("User-Agent")
	}
	if meta.DeviceID == "" {
		meta.DeviceID = strings.TrimSpace(c.GetHeader(constants.HeaderDeviceID))
	}
	if id, ok := c.Get(ContextKeyRequestID); ok {
		if value, ok := id.(string); ok {
			meta.RequestID = value
		}
	}
	return meta
}

// ClientIP first X-Forwarded-For entry, then X-Real-IP, then "unknown"
func ClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}
	return constants.UnknownIPAddress
}

// AdminToken returns the raw credential the auth middleware accepted
func AdminToken(c *gin.Context) string {
	value, ok := c.Get(ContextKeyAdminToken)
	if !ok {
		return ""
	}
	token, _ := value.(string)
	return token
}

// AdminClaims returns the claims the auth middleware stored
func AdminClaims(c *gin.Context) (*service.AdminClaims, bool) {
	value, exists := c.Get(ContextKeyAdminClaims)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return nil, false
	}
	claims, ok := value.(*service.AdminClaims)
	if !ok || claims == nil {
		RespondError(c, response.CodeInternal, "error.internal", nil)
		return nil, false
	}
	return claims, true
}
