package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/whistledesk/internal/cache"
	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const resetTokenBytes = 32

// ResetPasswordInput redeem a reset token
type ResetPasswordInput struct {
	Email       string
	Token       string
	NewPassword string
}

// PasswordResetService issues and redeems one-time password reset tokens
type PasswordResetService struct {
	cfg         *config.Config
	adminRepo   repository.AdminRepository
	sessionRepo repository.AdminSessionRepository
	notifier    Notifier
	audit       *AuditService
	now         func() time.Time
}

// NewPasswordResetService creates the password reset service
func NewPasswordResetService(cfg *config.Config, adminRepo repository.AdminRepository, sessionRepo repository.AdminSessionRepository, notifier Notifier, audit *AuditService) *PasswordResetService {
	return &PasswordResetService{
		cfg:         cfg,
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		notifier:    notifier,
		audit:       audit,
		now:         time.Now,
	}
}

// Forgot issues a reset token for email when such an admin exists.
// The caller answers identically whether or not it does; only the audit trail tells them apart.
func (s *PasswordResetService) Forgot(email string, meta RequestMeta) error {
	email = normalizeEmail(email)
	actor := AuditActor{Model: constants.ActorModelAdmin, Name: email, Role: constants.RoleAdmin}
	if email == "" {
		s.record(meta, constants.ActivityForgotPasswordFailed, actor, models.JSON{"reason": "bad_request"})
		return ErrBadRequest
	}

	admin, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		s.record(meta, constants.ActivityForgotPasswordFailed, actor, models.JSON{"reason": "internal_error"})
		return fmt.Errorf("load admin: %w", err)
	}
	if admin == nil {
		s.record(meta, constants.ActivityForgotPasswordNotFound, actor, nil)
		return nil
	}
	actor = adminActor(admin)

	rawToken, err := generateResetToken()
	if err != nil {
		s.record(meta, constants.ActivityForgotPasswordFailed, actor, models.JSON{"reason": "internal_error"})
		return fmt.Errorf("generate reset token: %w", err)
	}
	tokenHash, err := bcrypt.GenerateFromPassword([]byte(rawToken), bcrypt.DefaultCost)
	if err != nil {
		s.record(meta, constants.ActivityForgotPasswordFailed, actor, models.JSON{"reason": "internal_error"})
		return fmt.Errorf("hash reset token: %w", err)
	}
	ttl := s.cfg.PasswordReset.TTL()
	expiresAt := s.now().Add(ttl)
	if err := s.adminRepo.SetResetToken(admin.ID, string(tokenHash), expiresAt); err != nil {
		s.record(meta, constants.ActivityForgotPasswordFailed, actor, models.JSON{"reason": "internal_error"})
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := buildResetURL(s.cfg.PasswordReset.URLBase, admin.Email, rawToken)
	if err := s.notifier.NotifyPasswordReset(admin, resetURL, int(ttl/time.Minute), meta.Locale); err != nil {
		logger.Errorw("password_reset_notify_failed", "admin_id", admin.ID, "request_id", meta.RequestID, "error", err)
		s.record(meta, constants.ActivityForgotPasswordFailed, actor, models.JSON{"reason": "notify_failed"})
		return nil
	}

	s.record(meta, constants.ActivityForgotPasswordSent, actor, models.JSON{
		"after": models.JSON{"resetPasswordExpires": expiresAt.UTC().Format(time.RFC3339)},
	})
	return nil
}

// Reset redeems a reset token and sets a new password. Tokens are single-use;
// an expired token is cleared so later attempts fail too.
func (s *PasswordResetService) Reset(ctx context.Context, input ResetPasswordInput, meta RequestMeta) error {
	email := normalizeEmail(input.Email)
	rawToken := strings.TrimSpace(input.Token)
	actor := AuditActor{Model: constants.ActorModelAdmin, Name: email, Role: constants.RoleAdmin}
	if email == "" || rawToken == "" || input.NewPassword == "" {
		s.record(meta, constants.ActivityResetPasswordFailed, actor, models.JSON{"reason": "bad_request"})
		return ErrBadRequest
	}

	admin, err := s.findByResetToken(email, rawToken)
	if err != nil {
		s.record(meta, constants.ActivityResetPasswordFailed, actor, models.JSON{"reason": "internal_error"})
		return err
	}
	if admin == nil {
		s.record(meta, constants.ActivityResetPasswordInvalid, actor, nil)
		return ErrResetTokenInvalid
	}
	actor = adminActor(admin)

	now := s.now()
	if admin.ResetPasswordExpiresAt == nil || !admin.ResetPasswordExpiresAt.After(now) {
		if err := s.adminRepo.ClearResetToken(admin.ID); err != nil {
			logger.Errorw("password_reset_clear_expired_failed", "admin_id", admin.ID, "error", err)
		}
		s.record(meta, constants.ActivityResetPasswordExpired, actor, nil)
		return ErrResetTokenInvalid
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.NewPassword, admin.Email); err != nil {
		s.record(meta, constants.ActivityResetPasswordFailed, actor, models.JSON{"reason": "weak_password"})
		return err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.record(meta, constants.ActivityResetPasswordFailed, actor, models.JSON{"reason": "internal_error"})
		return fmt.Errorf("hash password: %w", err)
	}
	applied, err := s.adminRepo.ResetPassword(admin.ID, admin.ResetPasswordTokenHash, string(passwordHash))
	if err != nil {
		s.record(meta, constants.ActivityResetPasswordFailed, actor, models.JSON{"reason": "internal_error"})
		return fmt.Errorf("store password: %w", err)
	}
	if !applied {
		s.record(meta, constants.ActivityResetPasswordInvalid, actor, models.JSON{"reason": "token_consumed"})
		return ErrResetTokenInvalid
	}

	var revoked int64
	if s.cfg.Security.RevokeSessionsOnPasswordReset {
		revoked = s.revokeSessions(ctx, admin.ID, now)
	}

	s.record(meta, constants.ActivityResetPasswordSuccess, actor, models.JSON{
		"before":          models.JSON{"resetPasswordPending": true},
		"after":           models.JSON{"resetPasswordPending": false},
		"sessionsRevoked": revoked,
	})
	return nil
}

// findByResetToken compares rawToken against every outstanding hash with bcrypt
// rather than looking it up, since only the hash is stored.
func (s *PasswordResetService) findByResetToken(email, rawToken string) (*models.Admin, error) {
	admins, err := s.adminRepo.ListWithPendingReset()
	if err != nil {
		return nil, fmt.Errorf("list pending resets: %w", err)
	}
	for i := range admins {
		admin := &admins[i]
		if bcrypt.CompareHashAndPassword([]byte(admin.ResetPasswordTokenHash), []byte(rawToken)) != nil {
			continue
		}
		if !strings.EqualFold(admin.Email, email) {
			return nil, nil
		}
		return admin, nil
	}
	return nil, nil
}

// revokeSessions ends every session of adminID and tombstones the active one in the cache
func (s *PasswordResetService) revokeSessions(ctx context.Context, adminID uint, now time.Time) int64 {
	active, err := s.sessionRepo.GetActiveByAdmin(adminID, now)
	if err != nil {
		logger.Errorw("password_reset_load_session_failed", "admin_id", adminID, "error", err)
	}
	revoked, err := s.sessionRepo.RevokeAllForAdmin(adminID, constants.SessionRevokePasswordReset, now)
	if err != nil {
		logger.Errorw("password_reset_revoke_sessions_failed", "admin_id", adminID, "error", err)
	}
	var sessionID uint
	if active != nil {
		sessionID = active.ID
	}
	if err := cache.RevokeAdminSessionState(ctx, adminID, sessionID); err != nil {
		logger.Errorw("password_reset_session_cache_revoke_failed", "admin_id", adminID, "error", err)
	}
	return revoked
}

func (s *PasswordResetService) record(meta RequestMeta, activity string, actor AuditActor, data models.JSON) {
	s.audit.Record(AuditEntry{Meta: meta, Activity: activity, Actor: actor, Data: data})
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func buildResetURL(base, email, rawToken string) string {
	base = strings.TrimSpace(base)
	query := url.Values{}
	query.Set("token", rawToken)
	query.Set("email", email)
	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}
	return base + separator + query.Encode()
}
