package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/whistledesk/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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

func createTestAdmin(t *testing.T, db *gorm.DB, email string) *models.Admin {
	t.Helper()
	admin := &models.Admin{
		Email:        email,
		FullName:     "Test Admin",
		PasswordHash: "hash",
	}
	if err := NewAdminRepository(db).CreateFirst(admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}
