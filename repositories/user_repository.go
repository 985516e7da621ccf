package repositories

import (
	"context"

	"github.com/Angel-Soto43/AzalMechanicalSupport/models"

	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(_ context.Context, tx *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	err := useTx(r.db, tx).First(&user, userID).Error
	return user, err
}

func (r *GormUserRepository) GetByIDs(_ context.Context, tx *gorm.DB, userIDs []uint) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var users []models.User
	err := useTx(r.db, tx).Where("id IN ?", userIDs).Find(&users).Error
	return users, err
}
