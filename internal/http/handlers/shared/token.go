package shared

import (
	"net/http"
	"strings"

	"github.com/whistledesk/internal/config"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// BearerToken reads the credential from the Authorization header, falling back
// to the session cookie. ok is false when the header is present but malformed.
func BearerToken(c *gin.Context, cookieName string) (token string, ok bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return "", false
		}
		return strings.TrimSpace(header[len(bearerPrefix):]), true
	}
	if cookieName == "" {
		return "", true
	}
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return "", true
	}
	return strings.TrimSpace(cookie), true
}

// SetTokenCookie writes the httpOnly, SameSite=Lax session cookie
func SetTokenCookie(c *gin.Context, cfg config.CookieConfig, token string) {
	maxAge := cfg.MaxAgeSeconds
	if maxAge <= 0 {
		maxAge = 3600
	}
	writeTokenCookie(c, cfg, token, maxAge)
}

// ClearTokenCookie expires the session cookie
func ClearTokenCookie(c *gin.Context, cfg config.CookieConfig) {
	writeTokenCookie(c, cfg, "", -1)
}

func writeTokenCookie(c *gin.Context, cfg config.CookieConfig, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName(cfg),
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieName configured cookie name, "token" by default
func CookieName(cfg config.CookieConfig) string {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return "token"
	}
	return name
}
