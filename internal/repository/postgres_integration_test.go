//go:build integration
// +build integration

package repository

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB opens TEST_POSTGRES_DSN and recreates the portal tables.
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.IssueResponse{},
		&models.Issue{},
		&models.Reporter{},
		&models.AuditTrail{},
		&models.AdminSession{},
		&models.Admin{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresSingleAdminAndSessionConflict(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	adminRepo := NewAdminRepository(db)

	admin := &models.Admin{Email: "pg@example.com", FullName: "PG Admin", PasswordHash: "hash"}
	if err := adminRepo.CreateFirst(admin); err != nil {
		t.Fatalf("create first admin failed: %v", err)
	}
	second := &models.Admin{Email: "pg2@example.com", FullName: "Other", PasswordHash: "hash"}
	if err := adminRepo.CreateFirst(second); !errors.Is(err, ErrAdminExists) {
		t.Fatalf("second admin want ErrAdminExists got %v", err)
	}

	sessionRepo := NewAdminSessionRepository(db)
	now := time.Now()
	if _, _, err := sessionRepo.ActivateForDevice(SessionActivation{
		AdminID:     admin.ID,
		SessionHash: "hash-a",
		DeviceID:    "device-a",
		ExpiresAt:   now.Add(time.Hour),
		Now:         now,
	}); err != nil {
		t.Fatalf("activate first session failed: %v", err)
	}
	_, _, err := sessionRepo.ActivateForDevice(SessionActivation{
		AdminID:     admin.ID,
		SessionHash: "hash-b",
		DeviceID:    "device-b",
		ExpiresAt:   now.Add(time.Hour),
		Now:         now,
	})
	if !errors.Is(err, ErrActiveSessionConflict) {
		t.Fatalf("second device want ErrActiveSessionConflict got %v", err)
	}
}

func TestPostgresIssueJSONSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewIssueRepository(db)

	issue := &models.Issue{
		Ref:         "5f0c6f8e-0000-4000-8000-000000000001",
		Malpractice: models.Malpractice{Type: "Procurement Fraud", Description: "inflated tender"},
		Status:      constants.IssueStatusSubmitted,
		Source:      constants.IssueSourceWeb,
	}
	if err := repo.CreateWithReporter(issue, &models.Reporter{Anonymous: true}); err != nil {
		t.Fatalf("create issue failed: %v", err)
	}

	issues, total, err := repo.List(IssueListFilter{Page: 1, PageSize: 10, MalpracticeType: "procurement"})
	if err != nil {
		t.Fatalf("list issues failed: %v", err)
	}
	if total != 1 || len(issues) != 1 || issues[0].Ref != issue.Ref {
		t.Fatalf("json search should match case-insensitively, total=%d", total)
	}

	counts, err := repo.CountByStatus()
	if err != nil {
		t.Fatalf("count by status failed: %v", err)
	}
	if counts[constants.IssueStatusSubmitted] != 1 {
		t.Fatalf("submitted count want 1 got %d", counts[constants.IssueStatusSubmitted])
	}
}
