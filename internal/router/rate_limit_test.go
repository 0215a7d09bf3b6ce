package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/whistledesk/internal/config"

	"github.com/gin-gonic/gin"
)

func TestNewRateLimitRule(t *testing.T) {
	rule := NewRateLimitRule("", "login", config.RateLimitConfig{WindowSeconds: 300, MaxAttempts: 10})
	if rule.Prefix != "wd:rate:login" {
		t.Fatalf("prefix want wd:rate:login got %s", rule.Prefix)
	}
	if rule.MaxRequests != 10 || rule.WindowSeconds != 300 || !rule.enabled() {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if NewRateLimitRule("portal", "forgot_password", config.RateLimitConfig{}).enabled() {
		t.Fatalf("zero config should disable the rule")
	}
}

func TestForgotPasswordKeyUsesEmailAndIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/password/forgotPassword", strings.NewReader(`{"email":" Admin@Portal.org "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "10.0.0.7:5678"

	rule := NewRateLimitRule("wd", "forgot_password", config.RateLimitConfig{WindowSeconds: 60, MaxAttempts: 3})
	key := rule.key(c, KeyByIPAndJSONField("email"))
	if key != "wd:rate:forgot_password:admin@portal.org|10.0.0.7" {
		t.Fatalf("unexpected key %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "Admin@Portal.org") {
		t.Fatalf("body not restored: %s", body)
	}
}

func TestKeyFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		body string
	}{
		{name: "missing field", body: `{"other":"x"}`},
		{name: "non string", body: `{"email":42}`},
		{name: "not json", body: `email=a@b.c`},
		{name: "empty", body: ``},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tc.body))
			c.Request.RemoteAddr = "10.0.0.8:1000"
			if got := KeyByIPAndJSONField("email")(c); got != "10.0.0.8" {
				t.Fatalf("key want 10.0.0.8 got %s", got)
			}
		})
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	rule := NewRateLimitRule("wd", "login", config.RateLimitConfig{WindowSeconds: 60, MaxAttempts: 1})
	r.Use(RateLimitMiddleware(nil, rule, KeyByIP))
	r.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d: status want 200 got %d", i, w.Code)
		}
	}
}

func TestParseRateLimitReply(t *testing.T) {
	cases := []struct {
		name      string
		reply     interface{}
		wantCount int64
		wantTTL   int64
		wantErr   bool
	}{
		{name: "ok", reply: []interface{}{int64(3), int64(42)}, wantCount: 3, wantTTL: 42},
		{name: "no ttl", reply: []interface{}{int64(1), "x"}, wantCount: 1, wantTTL: 0},
		{name: "short", reply: []interface{}{int64(1)}, wantErr: true},
		{name: "bad count", reply: []interface{}{"1", int64(5)}, wantErr: true},
		{name: "not a list", reply: "OK", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			count, ttl, err := parseRateLimitReply(tc.reply)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err want %v got %v", tc.wantErr, err)
			}
			if count != tc.wantCount || ttl != tc.wantTTL {
				t.Fatalf("want (%d, %d) got (%d, %d)", tc.wantCount, tc.wantTTL, count, ttl)
			}
		})
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	if got := retryAfterSeconds(17, 60); got != 17 {
		t.Fatalf("want 17 got %d", got)
	}
	if got := retryAfterSeconds(-1, 60); got != 60 {
		t.Fatalf("want 60 got %d", got)
	}
	if got := retryAfterSeconds(0, 0); got != 1 {
		t.Fatalf("want 1 got %d", got)
	}
}
