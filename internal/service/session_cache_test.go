package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/whistledesk/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.UseClient(client, "wd")
	t.Cleanup(func() {
		cache.UseClient(nil, "")
		_ = client.Close()
	})
	return mr
}

func TestLogoutIsFinalWithSessionCache(t *testing.T) {
	env := setupServiceTestEnv(t)
	mr := useMiniredis(t)
	admin := env.createAdmin(t, "a@x.com", "secret123")
	ctx := context.Background()
	key := fmt.Sprintf("wd:auth:admin_session:%d", admin.ID)

	login, err := env.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret123", DeviceID: "D1"}, metaFor("/login", "D1"))
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	session, err := env.sessionRepo.GetActiveByAdmin(admin.ID, time.Now())
	if err != nil || session == nil {
		t.Fatalf("load active session failed: %v", err)
	}
	if got := mr.HGet(key, "sid"); got != strconv.FormatUint(uint64(session.ID), 10) {
		t.Fatalf("login should cache session %d, got sid %q", session.ID, got)
	}
	if _, err := env.auth.Verify(ctx, login.Token); err != nil {
		t.Fatalf("verify before logout failed: %v", err)
	}

	// snapshot taken by a request that is still in flight when logout lands
	stale := cache.BuildAdminSessionState(session)

	if err := env.auth.Logout(ctx, login.Token, metaFor("/logout", "D1")); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if written, err := cache.SetAdminSessionState(ctx, stale); err != nil || written {
		t.Fatalf("stale snapshot must not overwrite the tombstone, got %v %v", written, err)
	}
	if _, err := env.auth.Verify(ctx, login.Token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("verify after logout want ErrTokenRevoked, got %v", err)
	}
	if got := mr.HGet(key, "state"); got != "" {
		t.Fatalf("tombstone should have an empty state, got %q", got)
	}

	relogin, err := env.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret123", DeviceID: "D1"}, metaFor("/login", "D1"))
	if err != nil {
		t.Fatalf("relogin failed: %v", err)
	}
	if _, err := env.auth.Verify(ctx, relogin.Token); err != nil {
		t.Fatalf("new session should verify, got %v", err)
	}
}

func TestLogoutWithUnreachableCacheStillRevokes(t *testing.T) {
	env := setupServiceTestEnv(t)
	mr := useMiniredis(t)
	env.createAdmin(t, "a@x.com", "secret123")
	ctx := context.Background()

	login, err := env.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret123", DeviceID: "D1"}, metaFor("/login", "D1"))
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := env.auth.Verify(ctx, login.Token); err != nil {
		t.Fatalf("verify before logout failed: %v", err)
	}

	mr.SetError("ERR injected failure")
	if err := env.auth.Logout(ctx, login.Token, metaFor("/logout", "D1")); err != nil {
		t.Fatalf("logout should succeed on the database alone, got %v", err)
	}
	mr.SetError("")

	// the live snapshot is still in redis, it must not vouch for the token
	if !cache.SessionStateSuspended(time.Now()) {
		t.Fatalf("failed cache revoke should suspend the snapshot fast path")
	}
	if _, err := env.auth.Verify(ctx, login.Token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("verify after logout want ErrTokenRevoked, got %v", err)
	}
}
