package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/whistledesk/internal/authz"
	"github.com/whistledesk/internal/constants"
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

type fakeVerifier struct {
	claims *service.AdminClaims
	err    error
	tokens []string
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*service.AdminClaims, error) {
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func newAuthTestRouter(verifier service.CredentialVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminAuthMiddleware(verifier, "token"))
	r.GET("/admin/ping", func(c *gin.Context) {
		claims, _ := handlershared.AdminClaims(c)
		adminID, _ := c.Get(handlershared.ContextKeyAdminID)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email, "admin_id": adminID})
	})
	return r
}

func TestAdminAuthMiddlewareStatuses(t *testing.T) {
	cases := []struct {
		name   string
		header string
		err    error
		want   int
	}{
		{name: "missing", err: service.ErrTokenMissing, want: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", want: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer abc", err: service.ErrTokenInvalid, want: http.StatusUnauthorized},
		{name: "revoked", header: "Bearer abc", err: service.ErrTokenRevoked, want: http.StatusUnauthorized},
		{name: "secret missing", header: "Bearer abc", err: service.ErrJWTSecretMissing, want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthTestRouter(&fakeVerifier{err: tc.err})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status want %d got %d", tc.want, w.Code)
			}
			if resp := decodeEnvelope(t, w); resp.Status != tc.want {
				t.Fatalf("envelope status want %d got %d", tc.want, resp.Status)
			}
		})
	}
}

func TestAdminAuthMiddlewareAcceptsCookie(t *testing.T) {
	verifier := &fakeVerifier{claims: &service.AdminClaims{AdminID: 7, Email: "admin@example.com", Role: constants.RoleAdmin}}
	r := newAuthTestRouter(verifier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie-token"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	if len(verifier.tokens) != 1 || verifier.tokens[0] != "cookie-token" {
		t.Fatalf("verifier should receive cookie token, got %v", verifier.tokens)
	}
	if !strings.Contains(w.Body.String(), `"admin_id":7`) {
		t.Fatalf("admin id should be set on context, got %s", w.Body.String())
	}
}

func setupRBACTest(t *testing.T) *authz.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	return svc
}

func TestAdminRBACMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authzService := setupRBACTest(t)

	cases := []struct {
		name string
		role string
		want int
	}{
		{name: "admin allowed", role: constants.RoleAdmin, want: http.StatusOK},
		{name: "reporter denied", role: constants.RoleReporter, want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				c.Set(handlershared.ContextKeyAdminClaims, &service.AdminClaims{AdminID: 1, Role: tc.role})
				c.Next()
			})
			r.Use(AdminRBACMiddleware(authzService))
			r.GET("/admin/issues/:ref", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/issues/abc", nil))
			if w.Code != tc.want {
				t.Fatalf("status want %d got %d body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestAdminRBACMiddlewareWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminRBACMiddleware(setupRBACTest(t)))
	r.GET("/admin/issues", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/issues", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	cases := map[string]string{
		"/admin/issues/:ref/status": "issues",
		"/admin/audit-trails":       "audit-trails",
		"/health":                   "health",
		"":                          "system",
	}
	for input, want := range cases {
		if got := deriveAdminPermissionModule(input); got != want {
			t.Fatalf("module for %q want %s got %s", input, want, got)
		}
	}
}
