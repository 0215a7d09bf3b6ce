package repository

import (
	"testing"
	"time"

	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/models"
)

func TestAuditTrailRepositoryListAdminFilters(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAuditTrailRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	entries := []models.AuditTrail{
		{Activity: constants.ActivityLoginSuccess, Endpoint: "/login", ActorModel: constants.ActorModelAdmin, ActorUserID: 1, IPAddress: "1.1.1.1", CreatedAt: now.Add(-2 * time.Hour)},
		{Activity: constants.ActivityLogoutSuccess, Endpoint: "/logout", ActorModel: constants.ActorModelAdmin, ActorUserID: 1, IPAddress: "1.1.1.1", CreatedAt: now.Add(-time.Hour)},
		{Activity: constants.ActivityIssueSubmitted, Endpoint: "/issues", ActorModel: constants.ActorModelReporter, IPAddress: "2.2.2.2", CreatedAt: now},
	}
	for i := range entries {
		if err := repo.Create(&entries[i]); err != nil {
			t.Fatalf("create entry %d failed: %v", i, err)
		}
	}

	all, total, err := repo.ListAdmin(AuditTrailListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("list all want 3 got total=%d len=%d", total, len(all))
	}
	if all[0].Endpoint != "/issues" {
		t.Fatalf("entries should be newest first, got %s", all[0].Endpoint)
	}

	admins, total, err := repo.ListAdmin(AuditTrailListFilter{ActorModel: constants.ActorModelAdmin})
	if err != nil {
		t.Fatalf("list admin actor failed: %v", err)
	}
	if total != 2 || len(admins) != 2 {
		t.Fatalf("admin actor filter want 2 got %d", total)
	}

	logins, total, err := repo.ListAdmin(AuditTrailListFilter{Endpoint: "/login"})
	if err != nil {
		t.Fatalf("list by endpoint failed: %v", err)
	}
	if total != 1 || logins[0].Activity != constants.ActivityLoginSuccess {
		t.Fatalf("endpoint filter mismatch: %+v", logins)
	}

	from := now.Add(-90 * time.Minute)
	recent, total, err := repo.ListAdmin(AuditTrailListFilter{CreatedFrom: &from})
	if err != nil {
		t.Fatalf("list by date failed: %v", err)
	}
	if total != 2 || len(recent) != 2 {
		t.Fatalf("date filter want 2 got %d", total)
	}

	keyword, total, err := repo.ListAdmin(AuditTrailListFilter{Keyword: "Logout"})
	if err != nil {
		t.Fatalf("list by keyword failed: %v", err)
	}
	if total != 1 || keyword[0].Endpoint != "/logout" {
		t.Fatalf("keyword filter mismatch: %+v", keyword)
	}

	page, total, err := repo.ListAdmin(AuditTrailListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list page 2 failed: %v", err)
	}
	if total != 3 || len(page) != 1 {
		t.Fatalf("page 2 want 1 row of 3 got %d of %d", len(page), total)
	}
}

func TestAuditTrailRepositoryStoresDataInTransit(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAuditTrailRepository(db)

	entry := &models.AuditTrail{
		Activity: constants.ActivityIssueStatusChanged,
		Endpoint: "/admin/issues/x/status",
		DataInTransit: models.JSON{
			"before": map[string]interface{}{"status": "submitted"},
			"after":  map[string]interface{}{"status": "investigating"},
		},
	}
	if err := repo.Create(entry); err != nil {
		t.Fatalf("create entry failed: %v", err)
	}
	items, _, err := repo.ListAdmin(AuditTrailListFilter{})
	if err != nil || len(items) != 1 {
		t.Fatalf("list failed: %v", err)
	}
	after, ok := items[0].DataInTransit["after"].(map[string]interface{})
	if !ok || after["status"] != "investigating" {
		t.Fatalf("data in transit not round-tripped: %+v", items[0].DataInTransit)
	}
}
