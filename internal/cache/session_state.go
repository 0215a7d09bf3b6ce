package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/whistledesk/internal/models"

	"github.com/redis/go-redis/v9"
)

// SessionStateCacheTTL bounds how long a snapshot or tombstone lives
const SessionStateCacheTTL = 10 * time.Minute

// AdminSessionState snapshot of the admin's active session
type AdminSessionState struct {
	AdminID     uint   `json:"admin_id"`
	SessionID   uint   `json:"session_id"`
	SessionHash string `json:"session_hash"`
	DeviceID    string `json:"device_id"`
	ExpiresAt   int64  `json:"expires_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// The key is a hash of {sid, state}. sid only grows, so a write carrying an
// older session can never replace a newer session or its tombstone.
// A tombstone has an empty state and may replace the live entry of the same sid.
var sessionStateWriteScript = redis.NewScript(`
local current = tonumber(redis.call("HGET", KEYS[1], "sid") or "0")
local sid = tonumber(ARGV[1])
if current > sid or (current == sid and ARGV[3] == "live") then
	return 0
end
redis.call("HSET", KEYS[1], "sid", ARGV[1], "state", ARGV[2])
redis.call("EXPIRE", KEYS[1], ARGV[4])
return 1
`)

// suspendedUntil is set when a write could not reach redis. Until then
// the fast path is skipped and every check goes to the database.
var suspendedUntil atomic.Int64

func adminSessionStateKey(adminID uint) string {
	return fmt.Sprintf("auth:admin_session:%d", adminID)
}

// BuildAdminSessionState builds the snapshot from a session row
func BuildAdminSessionState(session *models.AdminSession) *AdminSessionState {
	if session == nil {
		return nil
	}
	return &AdminSessionState{
		AdminID:     session.AdminID,
		SessionID:   session.ID,
		SessionHash: session.SessionHash,
		DeviceID:    session.DeviceID,
		ExpiresAt:   session.ExpiresAt.Unix(),
		UpdatedAt:   time.Now().Unix(),
	}
}

// Matches reports whether the snapshot vouches for sessionHash at now
func (s *AdminSessionState) Matches(sessionHash string, now time.Time) bool {
	return s != nil && s.SessionHash != "" && s.SessionHash == sessionHash && now.Unix() < s.ExpiresAt
}

// SessionStateSuspended reports whether snapshots are currently ignored
func SessionStateSuspended(now time.Time) bool {
	return now.UnixNano() < suspendedUntil.Load()
}

func suspendSessionState() {
	suspendedUntil.Store(time.Now().Add(SessionStateCacheTTL).UnixNano())
}

// GetAdminSessionState reads the snapshot. A tombstone reads as a miss.
func GetAdminSessionState(ctx context.Context, adminID uint) (*AdminSessionState, bool, error) {
	if adminID == 0 || !Enabled() || SessionStateSuspended(time.Now()) {
		return nil, false, nil
	}
	raw, err := redisClient.HGet(ctx, buildKey(adminSessionStateKey(adminID)), "state").Result()
	if errors.Is(err, redis.Nil) || (err == nil && raw == "") {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var state AdminSessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, false, err
	}
	return &state, true, nil
}

// SetAdminSessionState caches a freshly issued session. It is a no-op when a
// newer session or a tombstone is already there. A failed write suspends the
// fast path, since the previous snapshot may still vouch for a revoked token.
func SetAdminSessionState(ctx context.Context, state *AdminSessionState) (bool, error) {
	if state == nil || state.AdminID == 0 || !Enabled() {
		return false, nil
	}
	ttl := SessionStateCacheTTL
	if remaining := time.Until(time.Unix(state.ExpiresAt, 0)); remaining < ttl {
		ttl = remaining
	}
	if ttl < time.Second {
		return false, nil
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return false, err
	}
	written, err := writeSessionState(ctx, state.AdminID, state.SessionID, string(payload), "live", ttl)
	if err != nil {
		suspendSessionState()
		return false, err
	}
	return written, nil
}

// RevokeAdminSessionState leaves a tombstone for sessionID so no in-flight
// write can bring it back. A failed write suspends the fast path.
func RevokeAdminSessionState(ctx context.Context, adminID, sessionID uint) error {
	if adminID == 0 || !Enabled() {
		return nil
	}
	if _, err := writeSessionState(ctx, adminID, sessionID, "", "revoked", SessionStateCacheTTL); err != nil {
		suspendSessionState()
		return err
	}
	return nil
}

func writeSessionState(ctx context.Context, adminID, sessionID uint, payload, kind string, ttl time.Duration) (bool, error) {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	result, err := sessionStateWriteScript.Run(ctx, redisClient,
		[]string{buildKey(adminSessionStateKey(adminID))},
		strconv.FormatUint(uint64(sessionID), 10), payload, kind, seconds,
	).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
