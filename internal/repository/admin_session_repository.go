package repository

import (
	"errors"
	"time"

	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminSessionRepository admin session data access
type AdminSessionRepository interface {
	ActivateForDevice(act SessionActivation) (*models.AdminSession, *models.AdminSession, error)
	Rotate(current *models.AdminSession, next SessionActivation) (*models.AdminSession, error)
	FindActiveByHash(sessionHash string, now time.Time) (*models.AdminSession, error)
	GetActiveByAdmin(adminID uint, now time.Time) (*models.AdminSession, error)
	Revoke(id uint, reason string, at time.Time) (bool, error)
	RevokeAllForAdmin(adminID uint, reason string, at time.Time) (int64, error)
	DeleteExpiredBefore(cutoff time.Time) (int64, error)
}

// GormAdminSessionRepository GORM implementation
type GormAdminSessionRepository struct {
	db *gorm.DB
}

// NewAdminSessionRepository creates the admin session repository
func NewAdminSessionRepository(db *gorm.DB) *GormAdminSessionRepository {
	return &GormAdminSessionRepository{db: db}
}

// ActivateForDevice installs a new active session for act.AdminID.
// An unexpired session on another device fails with ErrActiveSessionConflict.
// A session on the same device is superseded and returned as the second value.
func (r *GormAdminSessionRepository) ActivateForDevice(act SessionActivation) (*models.AdminSession, *models.AdminSession, error) {
	if act.AdminID == 0 || act.SessionHash == "" {
		return nil, nil, errors.New("invalid session activation")
	}
	now := activationNow(act)
	var created *models.AdminSession
	var superseded *models.AdminSession
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := expireActive(tx, act.AdminID, now); err != nil {
			return err
		}

		var current models.AdminSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("admin_id = ? AND revoked_at IS NULL", act.AdminID).
			First(&current).Error
		switch {
		case err == nil:
			if current.DeviceID != act.DeviceID {
				return ErrActiveSessionConflict
			}
			ok, err := revokeIfActive(tx, current.ID, constants.SessionRevokeSuperseded, now)
			if err != nil {
				return err
			}
			if !ok {
				return ErrActiveSessionConflict
			}
			current.RevokedAt = &now
			current.RevokeReason = constants.SessionRevokeSuperseded
			superseded = &current
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		session := newSession(act, now)
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		created = session
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrActiveSessionConflict
		}
		return nil, nil, err
	}
	return created, superseded, nil
}

// Rotate revokes current and installs next in its place.
// Fails with ErrSessionNotActive when current was revoked in the meantime.
func (r *GormAdminSessionRepository) Rotate(current *models.AdminSession, next SessionActivation) (*models.AdminSession, error) {
	if current == nil || current.ID == 0 {
		return nil, ErrSessionNotActive
	}
	now := activationNow(next)
	var created *models.AdminSession
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ok, err := revokeIfActive(tx, current.ID, constants.SessionRevokeRotated, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSessionNotActive
		}
		session := newSession(next, now)
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		created = session
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSessionNotActive
		}
		return nil, err
	}
	return created, nil
}

// FindActiveByHash returns nil, nil when no live session has sessionHash
func (r *GormAdminSessionRepository) FindActiveByHash(sessionHash string, now time.Time) (*models.AdminSession, error) {
	var session models.AdminSession
	err := r.db.Where("session_hash = ? AND revoked_at IS NULL AND expires_at > ?", sessionHash, now).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// GetActiveByAdmin returns nil, nil when the admin has no live session
func (r *GormAdminSessionRepository) GetActiveByAdmin(adminID uint, now time.Time) (*models.AdminSession, error) {
	var session models.AdminSession
	err := r.db.Where("admin_id = ? AND revoked_at IS NULL AND expires_at > ?", adminID, now).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Revoke soft-deletes one session; false when it was already revoked
func (r *GormAdminSessionRepository) Revoke(id uint, reason string, at time.Time) (bool, error) {
	return revokeIfActive(r.db, id, reason, at)
}

// RevokeAllForAdmin revokes every unrevoked session of the admin
func (r *GormAdminSessionRepository) RevokeAllForAdmin(adminID uint, reason string, at time.Time) (int64, error) {
	result := r.db.Model(&models.AdminSession{}).
		Where("admin_id = ? AND revoked_at IS NULL", adminID).
		Updates(map[string]interface{}{
			"revoked_at":    at,
			"revoke_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// DeleteExpiredBefore hard-deletes sessions that expired before cutoff
func (r *GormAdminSessionRepository) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", cutoff).Delete(&models.AdminSession{})
	return result.RowsAffected, result.Error
}

func activationNow(act SessionActivation) time.Time {
	if act.Now.IsZero() {
		return time.Now()
	}
	return act.Now
}

func newSession(act SessionActivation, now time.Time) *models.AdminSession {
	return &models.AdminSession{
		AdminID:     act.AdminID,
		SessionHash: act.SessionHash,
		DeviceID:    act.DeviceID,
		UserAgent:   act.UserAgent,
		IPAddress:   act.IPAddress,
		CreatedAt:   now,
		ExpiresAt:   act.ExpiresAt,
	}
}

func expireActive(tx *gorm.DB, adminID uint, now time.Time) error {
	return tx.Model(&models.AdminSession{}).
		Where("admin_id = ? AND revoked_at IS NULL AND expires_at <= ?", adminID, now).
		Updates(map[string]interface{}{
			"revoked_at":    now,
			"revoke_reason": constants.SessionRevokeExpired,
		}).Error
}

func revokeIfActive(db *gorm.DB, id uint, reason string, at time.Time) (bool, error) {
	result := db.Model(&models.AdminSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Updates(map[string]interface{}{
			"revoked_at":    at,
			"revoke_reason": reason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
