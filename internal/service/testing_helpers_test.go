package service

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-with-enough-entropy-0123456789"

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:service_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := models.Migrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = testJWTSecret
	cfg.JWT.ExpireMinutes = 60
	cfg.PasswordReset.URLBase = "https://portal.example/reset-password"
	cfg.PasswordReset.ExpireMinutes = 60
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{
		MinLength:     8,
		RequireLower:  true,
		RequireNumber: true,
	}
	return cfg
}

type sentReset struct {
	adminID  uint
	resetURL string
	minutes  int
}

type sentIssueStatus struct {
	ref        string
	status     string
	responseID uint
}

type fakeNotifier struct {
	mu          sync.Mutex
	resets      []sentReset
	issueEmails []sentIssueStatus
	resetErr    error
}

func (f *fakeNotifier) NotifyPasswordReset(admin *models.Admin, resetURL string, expireMinutes int, locale string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets = append(f.resets, sentReset{adminID: admin.ID, resetURL: resetURL, minutes: expireMinutes})
	return nil
}

func (f *fakeNotifier) NotifyIssueStatus(issueRef, status string, responseID uint, locale string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issueEmails = append(f.issueEmails, sentIssueStatus{ref: issueRef, status: status, responseID: responseID})
	return nil
}

func (f *fakeNotifier) lastResetToken(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.resets) == 0 {
		t.Fatalf("no reset email was dispatched")
	}
	parsed, err := url.Parse(f.resets[len(f.resets)-1].resetURL)
	if err != nil {
		t.Fatalf("parse reset url failed: %v", err)
	}
	token := parsed.Query().Get("token")
	if token == "" {
		t.Fatalf("reset url carries no token: %s", parsed)
	}
	return token
}

type serviceTestEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	adminRepo   *repository.GormAdminRepository
	sessionRepo *repository.GormAdminSessionRepository
	auditRepo   *repository.GormAuditTrailRepository
	issueRepo   *repository.GormIssueRepository
	audit       *AuditService
	notifier    *fakeNotifier
	auth        *AuthService
	reset       *PasswordResetService
	issues      *IssueService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()
	db := setupServiceTestDB(t)
	env := &serviceTestEnv{
		db:          db,
		cfg:         newTestConfig(),
		adminRepo:   repository.NewAdminRepository(db),
		sessionRepo: repository.NewAdminSessionRepository(db),
		auditRepo:   repository.NewAuditTrailRepository(db),
		issueRepo:   repository.NewIssueRepository(db),
		notifier:    &fakeNotifier{},
	}
	env.audit = NewAuditService(env.auditRepo, config.AuditConfig{})
	env.auth = NewAuthService(env.cfg, env.adminRepo, env.sessionRepo, env.audit)
	env.reset = NewPasswordResetService(env.cfg, env.adminRepo, env.sessionRepo, env.notifier, env.audit)
	env.issues = NewIssueService(env.issueRepo, env.notifier, env.audit)
	return env
}

func (e *serviceTestEnv) createAdmin(t *testing.T, email, password string) *models.Admin {
	t.Helper()
	admin, err := e.auth.Signup(SignupInput{Email: email, FullName: "Portal Admin", Password: password}, RequestMeta{Endpoint: "/signup"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	return admin
}

func (e *serviceTestEnv) auditActivities(t *testing.T) []string {
	t.Helper()
	var rows []models.AuditTrail
	if err := e.db.Order("id asc").Find(&rows).Error; err != nil {
		t.Fatalf("load audit trail failed: %v", err)
	}
	activities := make([]string, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, row.Activity)
	}
	return activities
}

func (e *serviceTestEnv) lastAudit(t *testing.T) models.AuditTrail {
	t.Helper()
	var row models.AuditTrail
	if err := e.db.Order("id desc").First(&row).Error; err != nil {
		t.Fatalf("load last audit entry failed: %v", err)
	}
	return row
}

func (e *serviceTestEnv) setNow(now time.Time) {
	clock := func() time.Time { return now }
	e.auth.now = clock
	e.reset.now = clock
}

func metaFor(endpoint, deviceID string) RequestMeta {
	return RequestMeta{
		Browser:   "test-agent",
		IPAddress: "203.0.113.7",
		DeviceID:  deviceID,
		Endpoint:  endpoint,
		RequestID: "req-test",
		Locale:    "en",
	}
}
