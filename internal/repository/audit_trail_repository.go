package repository

import (
	"strings"

	"github.com/whistledesk/internal/models"

	"gorm.io/gorm"
)

// AuditTrailRepository audit trail data access. Append and read only.
type AuditTrailRepository interface {
	Create(entry *models.AuditTrail) error
	ListAdmin(filter AuditTrailListFilter) ([]models.AuditTrail, int64, error)
}

// GormAuditTrailRepository GORM implementation
type GormAuditTrailRepository struct {
	db *gorm.DB
}

// NewAuditTrailRepository creates the audit trail repository
func NewAuditTrailRepository(db *gorm.DB) *GormAuditTrailRepository {
	return &GormAuditTrailRepository{db: db}
}

// Create appends one entry
func (r *GormAuditTrailRepository) Create(entry *models.AuditTrail) error {
	if entry == nil {
		return nil
	}
	return r.db.Create(entry).Error
}

// ListAdmin lists entries newest first
func (r *GormAuditTrailRepository) ListAdmin(filter AuditTrailListFilter) ([]models.AuditTrail, int64, error) {
	query := r.db.Model(&models.AuditTrail{})
	if filter.Endpoint != "" {
		query = query.Where("endpoint = ?", filter.Endpoint)
	}
	if filter.ActorModel != "" {
		query = query.Where("actor_model = ?", filter.ActorModel)
	}
	if filter.ActorUserID != 0 {
		query = query.Where("actor_user_id = ?", filter.ActorUserID)
	}
	if filter.IPAddress != "" {
		query = query.Where("ip_address = ?", filter.IPAddress)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		query = query.Where("activity "+likeOperator(r.db)+" ?", "%"+keyword+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var entries []models.AuditTrail
	if err := query.Order("id desc").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
