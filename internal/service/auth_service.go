package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
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

// SignupInput first admin creation
type SignupInput struct {
	Email    string
	FullName string
	Password string
}

// LoginInput admin login
type LoginInput struct {
	Email    string
	Password string
	DeviceID string
}

// LoginResult issued credential
type LoginResult struct {
	Admin     *models.Admin
	Token     string
	ExpiresAt time.Time
}

// AuthService admin authentication and session lifecycle
type AuthService struct {
	cfg         *config.Config
	adminRepo   repository.AdminRepository
	sessionRepo repository.AdminSessionRepository
	audit       *AuditService
	now         func() time.Time
}

// NewAuthService creates the auth service
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository, sessionRepo repository.AdminSessionRepository, audit *AuditService) *AuthService {
	return &AuthService{
		cfg:         cfg,
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		audit:       audit,
		now:         time.Now,
	}
}

var _ CredentialVerifier = (*AuthService)(nil)

// HashPassword hashes with bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares password with its bcrypt hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword checks the configured password policy
func (s *AuthService) ValidatePassword(password, email string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password, email)
}

// Signup creates the one admin account. Once it exists every call fails with ErrAdminExists.
func (s *AuthService) Signup(input SignupInput, meta RequestMeta) (*models.Admin, error) {
	email := normalizeEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)
	actor := AuditActor{Model: constants.ActorModelAdmin, Name: email, Role: constants.RoleAdmin}

	fail := func(err error, reason string) (*models.Admin, error) {
		s.record(meta, constants.ActivitySignupFailed, actor, models.JSON{"reason": reason})
		return nil, err
	}
	if email == "" || fullName == "" || input.Password == "" {
		return fail(ErrBadRequest, "bad_request")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fail(ErrInvalidEmail, "invalid_email")
	}
	if err := s.ValidatePassword(input.Password, email); err != nil {
		return fail(err, "weak_password")
	}
	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return fail(fmt.Errorf("hash password: %w", err), "internal_error")
	}

	admin := &models.Admin{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	}
	if err := s.adminRepo.CreateFirst(admin); err != nil {
		if errors.Is(err, repository.ErrAdminExists) {
			s.record(meta, constants.ActivitySignupBlocked, actor, nil)
			return nil, ErrAdminExists
		}
		return fail(fmt.Errorf("create admin: %w", err), "internal_error")
	}

	s.record(meta, constants.ActivitySignupSuccess, adminActor(admin), models.JSON{
		"after": models.JSON{"email": admin.Email, "fullName": admin.FullName},
	})
	return admin, nil
}

// Login authenticates an admin and binds the active session to input.DeviceID.
// Wrong email and wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput, meta RequestMeta) (*LoginResult, error) {
	email := normalizeEmail(input.Email)
	deviceID := strings.TrimSpace(input.DeviceID)
	meta.DeviceID = deviceID
	actor := AuditActor{Model: constants.ActorModelAdmin, Name: email, Role: constants.RoleAdmin}

	if email == "" || input.Password == "" || deviceID == "" {
		s.record(meta, constants.ActivityLoginFailed, actor, models.JSON{"reason": "bad_request"})
		return nil, ErrBadRequest
	}
	if s.secret() == "" {
		s.record(meta, constants.ActivityLoginFailed, actor, models.JSON{"reason": "jwt_secret_missing"})
		return nil, ErrJWTSecretMissing
	}

	admin, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		s.record(meta, constants.ActivityLoginFailed, actor, models.JSON{"reason": "internal_error"})
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if admin == nil {
		s.record(meta, constants.ActivityLoginAdminNotFound, actor, nil)
		return nil, ErrInvalidCredentials
	}
	actor = adminActor(admin)
	if err := s.VerifyPassword(admin.PasswordHash, input.Password); err != nil {
		s.record(meta, constants.ActivityLoginWrongPassword, actor, nil)
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	token, expiresAt, err := s.mint(admin, now)
	if err != nil {
		s.record(meta, constants.ActivityLoginFailed, actor, models.JSON{"reason": "internal_error"})
		return nil, err
	}
	session, superseded, err := s.sessionRepo.ActivateForDevice(repository.SessionActivation{
		AdminID:     admin.ID,
		SessionHash: HashSessionToken(token),
		DeviceID:    deviceID,
		UserAgent:   meta.Browser,
		IPAddress:   meta.IPAddress,
		ExpiresAt:   expiresAt,
		Now:         now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrActiveSessionConflict) {
			s.record(meta, constants.ActivityLoginDeviceConflict, actor, nil)
			return nil, ErrDeviceConflict
		}
		s.record(meta, constants.ActivityLoginFailed, actor, models.JSON{"reason": "internal_error"})
		return nil, fmt.Errorf("activate session: %w", err)
	}

	if err := s.adminRepo.TouchLastLogin(admin.ID, now); err != nil {
		logger.Warnw("auth_touch_last_login_failed", "admin_id", admin.ID, "error", err)
	}
	admin.LastLoginAt = &now
	s.cacheSession(ctx, session)

	s.record(meta, constants.ActivityLoginSuccess, actor, models.JSON{
		"before": sessionSnapshot(superseded),
		"after":  sessionSnapshot(session),
	})
	return &LoginResult{Admin: admin, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session behind token. A second logout with the same token
// fails verification with ErrTokenRevoked.
func (s *AuthService) Logout(ctx context.Context, token string, meta RequestMeta) error {
	claims, session, err := s.verify(ctx, token)
	if err != nil {
		s.record(meta, constants.ActivityLogoutFailed, claimsActor(claims), models.JSON{"reason": verifyFailureReason(err)})
		return err
	}
	actor := claimsActor(claims)
	ok, err := s.sessionRepo.Revoke(session.ID, constants.SessionRevokeLogout, s.now())
	if err != nil {
		s.record(meta, constants.ActivityLogoutFailed, actor, models.JSON{"reason": "internal_error"})
		return fmt.Errorf("revoke session: %w", err)
	}
	if !ok {
		s.record(meta, constants.ActivityLogoutFailed, actor, models.JSON{"reason": "token_revoked"})
		return ErrTokenRevoked
	}
	s.dropCachedSession(ctx, claims.AdminID, session.ID)

	s.record(meta, constants.ActivityLogoutSuccess, actor, models.JSON{
		"before": sessionSnapshot(session),
		"after":  models.JSON{"sessionId": nil, "deviceId": nil},
	})
	return nil
}

// CheckSession verifies token and returns its claims
func (s *AuthService) CheckSession(ctx context.Context, token string, meta RequestMeta) (*AdminClaims, error) {
	claims, _, err := s.verify(ctx, token)
	if err != nil {
		s.record(meta, constants.ActivityCheckSessionFailed, claimsActor(claims), models.JSON{"reason": verifyFailureReason(err)})
		return nil, err
	}
	s.record(meta, constants.ActivityCheckSessionSuccess, claimsActor(claims), nil)
	return claims, nil
}

// Regenerate swaps the session behind token for a fresh one on the same device.
// The old token stops verifying as soon as this returns.
func (s *AuthService) Regenerate(ctx context.Context, token string, meta RequestMeta) (*LoginResult, error) {
	claims, session, err := s.verify(ctx, token)
	if err != nil {
		s.record(meta, constants.ActivityRegenerateFailed, claimsActor(claims), models.JSON{"reason": verifyFailureReason(err)})
		return nil, err
	}
	actor := claimsActor(claims)
	fail := func(err error, reason string) (*LoginResult, error) {
		s.record(meta, constants.ActivityRegenerateFailed, actor, models.JSON{"reason": reason})
		return nil, err
	}

	admin, err := s.adminRepo.GetByID(claims.AdminID)
	if err != nil {
		return fail(fmt.Errorf("load admin: %w", err), "internal_error")
	}
	if admin == nil {
		return fail(ErrTokenInvalid, "admin_not_found")
	}
	actor = adminActor(admin)

	now := s.now()
	next, expiresAt, err := s.mint(admin, now)
	if err != nil {
		return fail(err, "internal_error")
	}
	rotated, err := s.sessionRepo.Rotate(session, repository.SessionActivation{
		AdminID:     admin.ID,
		SessionHash: HashSessionToken(next),
		DeviceID:    session.DeviceID,
		UserAgent:   firstNonEmpty(meta.Browser, session.UserAgent),
		IPAddress:   firstNonEmpty(meta.IPAddress, session.IPAddress),
		ExpiresAt:   expiresAt,
		Now:         now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotActive) {
			return fail(ErrTokenRevoked, "token_revoked")
		}
		return fail(fmt.Errorf("rotate session: %w", err), "internal_error")
	}
	s.cacheSession(ctx, rotated)

	s.record(meta, constants.ActivityRegenerateSuccess, actor, models.JSON{
		"before": sessionSnapshot(session),
		"after":  sessionSnapshot(rotated),
	})
	return &LoginResult{Admin: admin, Token: next, ExpiresAt: expiresAt}, nil
}

// Verify checks token signature, expiry and that it is the admin's active session.
func (s *AuthService) Verify(ctx context.Context, token string) (*AdminClaims, error) {
	claims, _, err := s.verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// SweepExpiredSessions hard-deletes sessions that expired more than retention ago
func (s *AuthService) SweepExpiredSessions(retention time.Duration) (int64, error) {
	if retention < 0 {
		retention = 0
	}
	deleted, err := s.sessionRepo.DeleteExpiredBefore(s.now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("sweep expired sessions: %w", err)
	}
	return deleted, nil
}

// verify returns the claims even on some failures so the caller can attribute the audit entry.
// It only reads the snapshot; Login and Regenerate are the only writers.
func (s *AuthService) verify(ctx context.Context, token string) (*AdminClaims, *models.AdminSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil, ErrTokenMissing
	}
	secret := s.secret()
	if secret == "" {
		return nil, nil, ErrJWTSecretMissing
	}
	now := s.now()
	claims, err := parseAdminToken(secret, token, now)
	if err != nil {
		return nil, nil, ErrTokenInvalid
	}
	hash := HashSessionToken(token)

	if state, hit, cacheErr := cache.GetAdminSessionState(ctx, claims.AdminID); cacheErr == nil && hit && state.Matches(hash, now) {
		return claims, &models.AdminSession{
			ID:          state.SessionID,
			AdminID:     state.AdminID,
			SessionHash: state.SessionHash,
			DeviceID:    state.DeviceID,
			ExpiresAt:   time.Unix(state.ExpiresAt, 0),
		}, nil
	}

	admin, err := s.adminRepo.GetByID(claims.AdminID)
	if err != nil {
		return claims, nil, fmt.Errorf("load admin: %w", err)
	}
	if admin == nil {
		return claims, nil, ErrTokenInvalid
	}
	session, err := s.sessionRepo.FindActiveByHash(hash, now)
	if err != nil {
		return claims, nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.AdminID != admin.ID {
		return claims, nil, ErrTokenRevoked
	}
	return claims, session, nil
}

func (s *AuthService) mint(admin *models.Admin, now time.Time) (string, time.Time, error) {
	return signAdminToken(s.secret(), AdminClaims{
		AdminID: admin.ID,
		Email:   admin.Email,
		Role:    constants.RoleAdmin,
	}, now, s.cfg.JWT.TTL())
}

func (s *AuthService) secret() string {
	if s == nil || s.cfg == nil {
		return ""
	}
	return s.cfg.JWT.SecretKey
}

func (s *AuthService) cacheSession(ctx context.Context, session *models.AdminSession) {
	if _, err := cache.SetAdminSessionState(ctx, cache.BuildAdminSessionState(session)); err != nil {
		logger.Errorw("auth_session_cache_set_failed", "admin_id", session.AdminID, "session_id", session.ID, "error", err)
	}
}

func (s *AuthService) dropCachedSession(ctx context.Context, adminID, sessionID uint) {
	if err := cache.RevokeAdminSessionState(ctx, adminID, sessionID); err != nil {
		logger.Errorw("auth_session_cache_revoke_failed", "admin_id", adminID, "session_id", sessionID, "error", err)
	}
}

func (s *AuthService) record(meta RequestMeta, activity string, actor AuditActor, data models.JSON) {
	s.audit.Record(AuditEntry{Meta: meta, Activity: activity, Actor: actor, Data: data})
}

func adminActor(admin *models.Admin) AuditActor {
	if admin == nil {
		return AuditActor{Model: constants.ActorModelAdmin, Role: constants.RoleAdmin}
	}
	return AuditActor{
		UserID: admin.ID,
		Model:  constants.ActorModelAdmin,
		Name:   admin.FullName,
		Role:   constants.RoleAdmin,
	}
}

func claimsActor(claims *AdminClaims) AuditActor {
	if claims == nil {
		return AuditActor{Model: constants.ActorModelAdmin, Role: constants.RoleAdmin}
	}
	return AuditActor{
		UserID: claims.AdminID,
		Model:  constants.ActorModelAdmin,
		Name:   claims.Email,
		Role:   claims.Role,
	}
}

func sessionSnapshot(session *models.AdminSession) models.JSON {
	if session == nil {
		return models.JSON{"sessionId": nil, "deviceId": nil}
	}
	return models.JSON{
		"sessionId": session.ID,
		"deviceId":  session.DeviceID,
		"expiresAt": session.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return "token_missing"
	case errors.Is(err, ErrJWTSecretMissing):
		return "jwt_secret_missing"
	case errors.Is(err, ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, ErrTokenRevoked):
		return "token_revoked"
	default:
		return "internal_error"
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
