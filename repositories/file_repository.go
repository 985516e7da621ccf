package repositories

import (
	"context"
	"time"

	"github.com/Angel-Soto43/AzalMechanicalSupport/models"

	"gorm.io/gorm"
)

// metaColumns lists every files column except the payload, so listing
// queries never drag document bodies out of the database.
const metaColumns = "id, contract_id, supplier, folder_id, name, original_name, mime_type, file_size, version, previous_version_id, uploaded_by, created_at, updated_at, deleted_at, deleted_by"

type GormFileRepository struct {
	db *gorm.DB
}

func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

func (r *GormFileRepository) Create(_ context.Context, tx *gorm.DB, file *models.File) error {
	return useTx(r.db, tx).Create(file).Error
}

func (r *GormFileRepository) GetByID(_ context.Context, tx *gorm.DB, fileID uint) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).First(&file, fileID).Error
	return file, err
}

func (r *GormFileRepository) GetByIDUnscoped(_ context.Context, tx *gorm.DB, fileID uint) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).Unscoped().First(&file, fileID).Error
	return file, err
}

func (r *GormFileRepository) ListByFolder(_ context.Context, tx *gorm.DB, folderID *uint) ([]models.File, error) {
	db := useTx(r.db, tx).Select(metaColumns)
	if folderID == nil {
		db = db.Where("folder_id IS NULL")
	} else {
		db = db.Where("folder_id = ?", *folderID)
	}
	var files []models.File
	err := db.Order("original_name ASC").Find(&files).Error
	return files, err
}

func (r *GormFileRepository) ListRecent(_ context.Context, tx *gorm.DB, limit int) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).Select(metaColumns).Order("created_at DESC").Limit(limit).Find(&files).Error
	return files, err
}

func (r *GormFileRepository) ListByUploader(_ context.Context, tx *gorm.DB, userID uint) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).Select(metaColumns).Where("uploaded_by = ?", userID).
		Order("created_at DESC").Find(&files).Error
	return files, err
}

func (r *GormFileRepository) ListRangeMeta(_ context.Context, tx *gorm.DB, in FileRangeInput) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).Select(metaColumns).
		Where("created_at >= ? AND created_at <= ?", in.Start, in.End).
		Order("created_at ASC").Find(&files).Error
	return files, err
}

func (r *GormFileRepository) ListDeletedBefore(_ context.Context, tx *gorm.DB, cutoff time.Time) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).Unscoped().Select(metaColumns).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&files).Error
	return files, err
}

func (r *GormFileRepository) CountActiveByContract(_ context.Context, tx *gorm.DB, contractID string, excludeID uint) (int64, error) {
	db := useTx(r.db, tx).Model(&models.File{}).Where("contract_id = ?", contractID)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	var count int64
	err := db.Count(&count).Error
	return count, err
}

func (r *GormFileRepository) UpdateByID(_ context.Context, tx *gorm.DB, fileID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.File{}).Where("id = ?", fileID).Updates(updates).Error
}

func (r *GormFileRepository) SoftDeleteByID(_ context.Context, tx *gorm.DB, fileID uint, deletedBy uint) error {
	db := useTx(r.db, tx)
	if err := db.Model(&models.File{}).Where("id = ?", fileID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return db.Delete(&models.File{}, fileID).Error
}

func (r *GormFileRepository) PurgeByID(_ context.Context, tx *gorm.DB, fileID uint) error {
	return useTx(r.db, tx).Unscoped().Delete(&models.File{}, fileID).Error
}

func (r *GormFileRepository) PurgeByFolderID(_ context.Context, tx *gorm.DB, folderID uint) error {
	return useTx(r.db, tx).Unscoped().Where("folder_id = ?", folderID).Delete(&models.File{}).Error
}
