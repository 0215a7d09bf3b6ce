package repository

import (
	"errors"
	"time"

	"github.com/whistledesk/internal/models"

	"gorm.io/gorm"
)

// AdminRepository admin data access
type AdminRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AdminRepository

	GetByEmail(email string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	Count() (int64, error)
	CreateFirst(admin *models.Admin) error
	TouchLastLogin(id uint, at time.Time) error
	SetResetToken(id uint, tokenHash string, expiresAt time.Time) error
	ClearResetToken(id uint) error
	ListWithPendingReset() ([]models.Admin, error)
	ResetPassword(id uint, tokenHash, passwordHash string) (bool, error)
}

// GormAdminRepository GORM implementation
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates the admin repository
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// WithTx binds a transaction
func (r *GormAdminRepository) WithTx(tx *gorm.DB) AdminRepository {
	if tx == nil {
		return r
	}
	return &GormAdminRepository{db: tx}
}

// Transaction runs fn in a transaction
func (r *GormAdminRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByEmail returns nil, nil when no admin has email
func (r *GormAdminRepository) GetByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByID returns nil, nil when the admin is missing
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// Count counts admins
func (r *GormAdminRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateFirst inserts admin only while the table is empty.
// The count and insert share a transaction and the singleton unique index
// rejects a concurrent second insert.
func (r *GormAdminRepository) CreateFirst(admin *models.Admin) error {
	if admin == nil {
		return errors.New("admin is nil")
	}
	admin.Singleton = models.AdminSingletonGuard
	err := r.Transaction(func(tx *gorm.DB) error {
		txRepo := r.WithTx(tx)
		count, err := txRepo.Count()
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAdminExists
		}
		return tx.Create(admin).Error
	})
	if err != nil && isUniqueViolation(err) {
		return ErrAdminExists
	}
	return err
}

// TouchLastLogin records a successful login
func (r *GormAdminRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// SetResetToken stores a hashed reset token and its deadline
func (r *GormAdminRepository) SetResetToken(id uint, tokenHash string, expiresAt time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_password_token_hash": tokenHash,
		"reset_password_expires_at": expiresAt,
	}).Error
}

// ClearResetToken drops any outstanding reset token
func (r *GormAdminRepository) ClearResetToken(id uint) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_password_token_hash": "",
		"reset_password_expires_at": nil,
	}).Error
}

// ListWithPendingReset lists admins holding a reset token
func (r *GormAdminRepository) ListWithPendingReset() ([]models.Admin, error) {
	admins := make([]models.Admin, 0)
	if err := r.db.Where("reset_password_token_hash <> ?", "").Order("id ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

// ResetPassword stores a new password hash and consumes the reset token in one update.
// It reports false when tokenHash is no longer the outstanding token, so a token
// redeemed concurrently succeeds only once.
func (r *GormAdminRepository) ResetPassword(id uint, tokenHash, passwordHash string) (bool, error) {
	if tokenHash == "" {
		return false, nil
	}
	result := r.db.Model(&models.Admin{}).
		Where("id = ? AND reset_password_token_hash = ?", id, tokenHash).
		Updates(map[string]interface{}{
			"password_hash":             passwordHash,
			"reset_password_token_hash": "",
			"reset_password_expires_at": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
