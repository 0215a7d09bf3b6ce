package repository

import (
	"errors"
	"strings"

	"github.com/whistledesk/internal/models"

	"gorm.io/gorm"
)

// IssueRepository issue data access
type IssueRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) IssueRepository

	Create(issue *models.Issue) error
	CreateWithReporter(issue *models.Issue, reporter *models.Reporter) error
	GetByRef(ref string) (*models.Issue, error)
	GetByRefWithDetails(ref string) (*models.Issue, error)
	List(filter IssueListFilter) ([]models.Issue, int64, error)
	ListAll() ([]models.Issue, error)
	UpdateStatus(id uint, from, to string) (bool, error)
	AddResponse(response *models.IssueResponse) error
	CountByStatus() (map[string]int64, error)
}

// GormIssueRepository GORM implementation
type GormIssueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates the issue repository
func NewIssueRepository(db *gorm.DB) *GormIssueRepository {
	return &GormIssueRepository{db: db}
}

// WithTx binds a transaction
func (r *GormIssueRepository) WithTx(tx *gorm.DB) IssueRepository {
	if tx == nil {
		return r
	}
	return &GormIssueRepository{db: tx}
}

// Transaction runs fn in a transaction
func (r *GormIssueRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create inserts an issue
func (r *GormIssueRepository) Create(issue *models.Issue) error {
	if issue == nil {
		return errors.New("issue is nil")
	}
	return r.db.Create(issue).Error
}

// CreateWithReporter inserts the reporter, when given, and the issue together
func (r *GormIssueRepository) CreateWithReporter(issue *models.Issue, reporter *models.Reporter) error {
	if issue == nil {
		return errors.New("issue is nil")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if reporter != nil {
			if err := tx.Create(reporter).Error; err != nil {
				return err
			}
			issue.ReporterID = &reporter.ID
		}
		return tx.Omit("Reporter", "Responses").Create(issue).Error
	})
}

// GetByRef returns nil, nil when ref is unknown
func (r *GormIssueRepository) GetByRef(ref string) (*models.Issue, error) {
	var issue models.Issue
	if err := r.db.Where("ref = ?", ref).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

// GetByRefWithDetails loads the reporter and responses as well
func (r *GormIssueRepository) GetByRefWithDetails(ref string) (*models.Issue, error) {
	var issue models.Issue
	err := r.db.
		Preload("Reporter").
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Where("ref = ?", ref).
		First(&issue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

// List lists issues newest first
func (r *GormIssueRepository) List(filter IssueListFilter) ([]models.Issue, int64, error) {
	query := r.db.Model(&models.Issue{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if kind := strings.TrimSpace(filter.MalpracticeType); kind != "" {
		query = query.Where(jsonTextExpr(r.db, "malpractice", "type")+" "+likeOperator(r.db)+" ?", "%"+kind+"%")
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

	var issues []models.Issue
	if err := query.Preload("Reporter").Order("id desc").Find(&issues).Error; err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// ListAll loads every issue for the live feed snapshot
func (r *GormIssueRepository) ListAll() ([]models.Issue, error) {
	issues := make([]models.Issue, 0)
	if err := r.db.Preload("Reporter").Order("id desc").Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// UpdateStatus moves an issue from one status to another; false when it was no longer in from
func (r *GormIssueRepository) UpdateStatus(id uint, from, to string) (bool, error) {
	result := r.db.Model(&models.Issue{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddResponse appends an admin response
func (r *GormIssueRepository) AddResponse(response *models.IssueResponse) error {
	if response == nil {
		return errors.New("response is nil")
	}
	return r.db.Create(response).Error
}

// CountByStatus counts issues per status
func (r *GormIssueRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	if err := r.db.Model(&models.Issue{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Total
	}
	return counts, nil
}
