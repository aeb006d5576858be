package repository

import (
	"game_portal_backend/internal/model"

	"gorm.io/gorm"
)

// ActivityRepository 只提供追加和读取
type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(a *model.Activity) error {
	return r.DB.Create(a).Error
}

func (r *ActivityRepository) FindByID(id uint) (*model.Activity, error) {
	var a model.Activity
	err := r.DB.Preload("User").First(&a, id).Error
	return &a, err
}

// List 最新在前
func (r *ActivityRepository) List(limit, offset int) ([]model.Activity, int64, error) {
	var activities []model.Activity
	var total int64

	if err := r.DB.Model(&model.Activity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&activities).Error
	return activities, total, err
}

func (r *ActivityRepository) ListByUser(userID uint, limit int) ([]model.Activity, error) {
	var activities []model.Activity
	err := r.DB.Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
