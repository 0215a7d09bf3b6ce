package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/whistledesk/internal/config"
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/i18n"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const defaultRateLimitMessageKey = "error.rate_limited"

// RateLimitKeyFunc builds the per-caller part of a rate limit key
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule fixed-window limit for one scope (login, forgot_password)
type RateLimitRule struct {
	Scope         string
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

// NewRateLimitRule builds a rule keyed under <redisPrefix>:rate:<scope>
func NewRateLimitRule(redisPrefix, scope string, cfg config.RateLimitConfig) RateLimitRule {
	redisPrefix = strings.TrimSpace(redisPrefix)
	if redisPrefix == "" {
		redisPrefix = "wd"
	}
	return RateLimitRule{
		Scope:         scope,
		Prefix:        fmt.Sprintf("%s:rate:%s", redisPrefix, scope),
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxAttempts,
		MessageKey:    defaultRateLimitMessageKey,
	}
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) key(c *gin.Context, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if r.Prefix == "" {
		return key
	}
	return r.Prefix + ":" + key
}

// INCR then EXPIRE on the first hit; returns {count, ttl}
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

var errRateLimitReply = errors.New("unexpected rate limit reply")

// RateLimitMiddleware rejects callers over the rule's budget with 429 and a
// Retry-After header. A nil client or a zero rule disables limiting.
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		key := rule.key(c, keyFunc)
		reply, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Result()
		if err != nil {
			abortRateLimitUnavailable(c, rule, err)
			return
		}
		count, ttl, err := parseRateLimitReply(reply)
		if err != nil {
			abortRateLimitUnavailable(c, rule, err)
			return
		}
		if count <= int64(rule.MaxRequests) {
			c.Next()
			return
		}

		wait := retryAfterSeconds(ttl, rule.WindowSeconds)
		msgKey := strings.TrimSpace(rule.MessageKey)
		if msgKey == "" {
			msgKey = defaultRateLimitMessageKey
		}
		handlershared.RequestLog(c).Warnw("rate_limit_exceeded",
			"scope", rule.Scope,
			"client_ip", handlershared.ClientIP(c),
			"count", count,
			"retry_after", wait,
		)
		c.Header("Retry-After", strconv.Itoa(wait))
		response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), msgKey, wait))
		c.Abort()
	}
}

func abortRateLimitUnavailable(c *gin.Context, rule RateLimitRule, err error) {
	handlershared.RequestLog(c).Errorw("rate_limit_unavailable", "scope", rule.Scope, "error", err)
	response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
	c.Abort()
}

func parseRateLimitReply(reply interface{}) (int64, int64, error) {
	values, ok := reply.([]interface{})
	if !ok || len(values) < 2 {
		return 0, 0, errRateLimitReply
	}
	count, ok := values[0].(int64)
	if !ok {
		return 0, 0, errRateLimitReply
	}
	ttl, _ := values[1].(int64)
	return count, ttl, nil
}

// retryAfterSeconds falls back to the full window when redis reports no ttl
func retryAfterSeconds(ttl int64, window int) int {
	wait := int(ttl)
	if wait < 1 {
		wait = window
	}
	if wait < 1 {
		wait = 1
	}
	return wait
}

// KeyByIP keys on the client IP
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField keys on a JSON body field plus the client IP. The body is
// restored so the handler can still bind it.
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(readJSONField(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload[field], &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
