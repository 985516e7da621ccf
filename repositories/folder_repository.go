package repositories

import (
	"context"

	"github.com/Angel-Soto43/AzalMechanicalSupport/models"

	"gorm.io/gorm"
)

type GormFolderRepository struct {
	db *gorm.DB
}

func NewGormFolderRepository(db *gorm.DB) *GormFolderRepository {
	return &GormFolderRepository{db: db}
}

func (r *GormFolderRepository) GetByID(_ context.Context, tx *gorm.DB, folderID uint) (models.Folder, error) {
	var folder models.Folder
	err := useTx(r.db, tx).First(&folder, folderID).Error
	return folder, err
}

func (r *GormFolderRepository) Create(_ context.Context, tx *gorm.DB, folder *models.Folder) error {
	return useTx(r.db, tx).Create(folder).Error
}

func (r *GormFolderRepository) ListRoots(_ context.Context, tx *gorm.DB) ([]models.Folder, error) {
	var folders []models.Folder
	err := useTx(r.db, tx).Where("parent_id IS NULL").Order("name ASC").Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) ListChildren(_ context.Context, tx *gorm.DB, parentID uint) ([]models.Folder, error) {
	var folders []models.Folder
	err := useTx(r.db, tx).Where("parent_id = ?", parentID).Order("name ASC").Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) CountByParentAndName(_ context.Context, tx *gorm.DB, parentID *uint, name string, excludeID uint) (int64, error) {
	db := useTx(r.db, tx).Model(&models.Folder{}).Where("name = ?", name)
	if parentID == nil {
		db = db.Where("parent_id IS NULL")
	} else {
		db = db.Where("parent_id = ?", *parentID)
	}
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	var count int64
	err := db.Count(&count).Error
	return count, err
}

func (r *GormFolderRepository) CountAll(_ context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := useTx(r.db, tx).Model(&models.Folder{}).Count(&count).Error
	return count, err
}

func (r *GormFolderRepository) UpdateByID(_ context.Context, tx *gorm.DB, folderID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.Folder{}).Where("id = ?", folderID).Updates(updates).Error
}

func (r *GormFolderRepository) DeleteByID(_ context.Context, tx *gorm.DB, folderID uint) error {
	return useTx(r.db, tx).Delete(&models.Folder{}, folderID).Error
}
