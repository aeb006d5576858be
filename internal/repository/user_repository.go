package repository

import (
	"game_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByIDs(ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// TouchLastSeen 只更新 last_seen，不触发 updated_at
func (r *UserRepository) TouchLastSeen(id uint, at time.Time) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).UpdateColumn("last_seen", at).Error
}

// SetAdmin 修改管理员标志，返回是否有行被修改
func (r *UserRepository) SetAdmin(id uint, isAdmin bool) (bool, error) {
	res := r.DB.Model(&model.User{}).Where("id = ?", id).Update("is_admin", isAdmin)
	return res.RowsAffected > 0, res.Error
}

// Search 按名称或邮箱模糊搜索，排除自己
func (r *UserRepository) Search(query string, excludeID uint, limit int) ([]model.User, error) {
	var users []model.User
	searchTerm := "%" + query + "%"
	err := r.DB.Where("id <> ?", excludeID).
		Where("(name LIKE ? OR email LIKE ?)", searchTerm, searchTerm).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) List(limit, offset int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.DB.Model(&model.User{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) Count() (int64, error) {
	var total int64
	err := r.DB.Model(&model.User{}).Count(&total).Error
	return total, err
}
