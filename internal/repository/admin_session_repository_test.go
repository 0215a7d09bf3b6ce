package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/models"
)

func activation(adminID uint, hash, device string, now time.Time) SessionActivation {
	return SessionActivation{
		AdminID:     adminID,
		SessionHash: hash,
		DeviceID:    device,
		UserAgent:   "test-agent",
		IPAddress:   "10.0.0.1",
		ExpiresAt:   now.Add(time.Hour),
		Now:         now,
	}
}

func TestAdminSessionActivateRejectsOtherDevice(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAdminSessionRepository(db)
	admin := createTestAdmin(t, db, "a@x.com")
	now := time.Now()

	first, superseded, err := repo.ActivateForDevice(activation(admin.ID, "h1", "D1", now))
	if err != nil {
		t.Fatalf("first activation failed: %v", err)
	}
	if first == nil || superseded != nil {
		t.Fatalf("first activation should create without superseding")
	}

	if _, _, err := repo.ActivateForDevice(activation(admin.ID, "h2", "D2", now)); !errors.Is(err, ErrActiveSessionConflict) {
		t.Fatalf("second device want ErrActiveSessionConflict got %v", err)
	}

	active, err := repo.GetActiveByAdmin(admin.ID, now)
	if err != nil || active == nil {
		t.Fatalf("active session lookup failed: %v", err)
	}
	if active.SessionHash != "h1" {
		t.Fatalf("conflict must leave the original session active, got %s", active.SessionHash)
	}
}

func TestAdminSessionActivateSupersedesSameDevice(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAdminSessionRepository(db)
	admin := createTestAdmin(t, db, "a@x.com")
	now := time.Now()

	if _, _, err := repo.ActivateForDevice(activation(admin.ID, "h1", "D1", now)); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}
	second, superseded, err := repo.ActivateForDevice(activation(admin.ID, "h2", "D1", now.Add(time.Second)))
	if err != nil {
		t.Fatalf("same device activation failed: %v", err)
	}
	if superseded == nil || superseded.SessionHash != "h1" || superseded.RevokeReason != constants.SessionRevokeSuperseded {
		t.Fatalf("expected h1 superseded, got %+v", superseded)
	}
	if second.SessionHash != "h2" {
		t.Fatalf("unexpected new session %+v", second)
	}

	old, err := repo.FindActiveByHash("h1", now.Add(2*time.Second))
	if err != nil {
		t.Fatalf("find old session failed: %v", err)
	}
	if old != nil {
		t.Fatalf("superseded session must not be active")
	}
}

func TestAdminSessionActivateReplacesExpiredSession(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAdminSessionRepository(db)
	admin := createTestAdmin(t, db, "a@x.com")
	past := time.Now().Add(-2 * time.Hour)

	if _, _, err := repo.ActivateForDevice(activation(admin.ID, "h1", "D1", past)); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}
	now := time.Now()
	if _, _, err := repo.ActivateForDevice(activation(admin.ID, "h2", "D2", now)); err != nil {
		t.Fatalf("expired session on another device must not block login: %v", err)
	}

	var expired models.AdminSession
	if err := db.Where("session_hash = ?", "h1").First(&expired).Error; err != nil {
		t.Fatalf("load expired session failed: %v", err)
	}
	if expired.RevokedAt == nil || expired.RevokeReason != constants.SessionRevokeExpired {
		t.Fatalf("expired session should be revoked as expired, got %+v", expired)
	}
}

func TestAdminSessionPartialIndexAllowsOnlyOneActive(t *testing.T) {
	db := setupRepositoryTestDB(t)
	admin := createTestAdmin(t, db, "a@x.com")
	now := time.Now()

	rows := []models.AdminSession{
		{AdminID: admin.ID, SessionHash: "h1", DeviceID: "D1", ExpiresAt: now.Add(time.Hour)},
		{AdminID: admin.ID, SessionHash: "h2", DeviceID: "D2", ExpiresAt: now.Add(time.Hour)},
	}
	if err := db.Create(&rows[0]).Error; err != nil {
		t.Fatalf("insert first session failed: %v", err)
	}
	if err := db.Create(&rows[1]).Error; err == nil || !isUniqueViolation(err) {
		t.Fatalf("second active session should violate the partial index, got %v", err)
	}

	revokedAt := now
	revoked := models.AdminSession{AdminID: admin.ID, SessionHash: "h3", DeviceID: "D3", ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}
	if err := db.Create(&revoked).Error; err != nil {
		t.Fatalf("revoked rows are outside the partial index: %v", err)
	}
}

func TestAdminSessionRevokeIsConditional(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAdminSessionRepository(db)
	admin := createTestAdmin(t, db, "a@x.com")
	now := time.Now()

	session, _, err := repo.ActivateForDevice(activation(admin.ID, "h1", "D1", now))
	if err != nil {
		t.Fatalf("activation failed: %v", err)
	}
	ok, err := repo.Revoke(session.ID, constants.SessionRevokeLogout, now)
	if err != nil || !ok {
		t.Fatalf("first revoke want ok got %v %v", ok, err)
	}
	ok, err = repo.Revoke(session.ID, constants.SessionRevokeLogout, now)
	if err != nil {
		t.Fatalf("second revoke failed: %v", err)
	}
	if ok {
		t.Fatalf("second revoke should report no change")
	}
	if _, _, err := repo.ActivateForDevice(activation(admin.ID, "h2", "D2", now)); err != nil {
		t.Fatalf("after logout another device may log in: %v", err)
	}
}

func TestAdminSessionRotate(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAdminSessionRepository(db)
	admin := createTestAdmin(t, db, "a@x.com")
	now := time.Now()

	current, _, err := repo.ActivateForDevice(activation(admin.ID, "h1", "D1", now))
	if err != nil {
		t.Fatalf("activation failed: %v", err)
	}
	next, err := repo.Rotate(current, activation(admin.ID, "h2", "D1", now))
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if next.SessionHash != "h2" {
		t.Fatalf("unexpected rotated session %+v", next)
	}
	if _, err := repo.Rotate(current, activation(admin.ID, "h3", "D1", now)); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("rotating a revoked session want ErrSessionNotActive got %v", err)
	}
}

func TestAdminSessionRevokeAllAndDeleteExpired(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAdminSessionRepository(db)
	admin := createTestAdmin(t, db, "a@x.com")
	old := time.Now().Add(-48 * time.Hour)

	if _, _, err := repo.ActivateForDevice(activation(admin.ID, "old", "D1", old)); err != nil {
		t.Fatalf("old activation failed: %v", err)
	}
	now := time.Now()
	if _, _, err := repo.ActivateForDevice(activation(admin.ID, "fresh", "D1", now)); err != nil {
		t.Fatalf("fresh activation failed: %v", err)
	}

	revoked, err := repo.RevokeAllForAdmin(admin.ID, constants.SessionRevokePasswordReset, now)
	if err != nil {
		t.Fatalf("revoke all failed: %v", err)
	}
	if revoked != 1 {
		t.Fatalf("revoke all want 1 got %d", revoked)
	}

	deleted, err := repo.DeleteExpiredBefore(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("delete expired want 1 got %d", deleted)
	}
	var remaining int64
	db.Model(&models.AdminSession{}).Count(&remaining)
	if remaining != 1 {
		t.Fatalf("remaining sessions want 1 got %d", remaining)
	}
}
