package repositories

import (
	"context"

	"github.com/Angel-Soto43/AzalMechanicalSupport/models"

	"gorm.io/gorm"
)

// GormAuditLogRepository only ever inserts and selects; the audit table is
// append-only by construction.
type GormAuditLogRepository struct {
	db *gorm.DB
}

func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

func (r *GormAuditLogRepository) Create(_ context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	return useTx(r.db, tx).Create(entry).Error
}

func (r *GormAuditLogRepository) filtered(db *gorm.DB, in AuditListInput) *gorm.DB {
	db = db.Model(&models.AuditLog{})
	if in.UserID != nil {
		db = db.Where("user_id = ?", *in.UserID)
	}
	if in.Action != "" {
		db = db.Where("action = ?", in.Action)
	}
	return db
}

func (r *GormAuditLogRepository) List(_ context.Context, tx *gorm.DB, in AuditListInput) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.filtered(useTx(r.db, tx), in).
		Order("created_at DESC").Offset(in.Offset).Limit(in.Limit).Find(&logs).Error
	return logs, err
}

func (r *GormAuditLogRepository) Count(_ context.Context, tx *gorm.DB, in AuditListInput) (int64, error) {
	var count int64
	err := r.filtered(useTx(r.db, tx), in).Count(&count).Error
	return count, err
}
