package repository

import (
	"game_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

// ListVisible 非隐藏成就，typ 为空或 all 时不过滤
func (r *AchievementRepository) ListVisible(typ string) ([]model.Achievement, error) {
	var achievements []model.Achievement
	db := r.DB.Where("is_hidden = ?", false)
	if typ != "" && typ != "all" {
		db = db.Where("type = ?", typ)
	}
	err := db.Order("points ASC").Order("id ASC").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindByID(id uint) (*model.Achievement, error) {
	var a model.Achievement
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *AchievementRepository) FindByName(name string) (*model.Achievement, error) {
	var a model.Achievement
	err := r.DB.Where("name = ?", name).First(&a).Error
	return &a, err
}

// Progress 用户的全部中间表记录，按成就 ID 索引
func (r *AchievementRepository) Progress(userID uint) (map[uint]model.UserAchievement, error) {
	var rows []model.UserAchievement
	if err := r.DB.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]model.UserAchievement, len(rows))
	for _, row := range rows {
		out[row.AchievementID] = row
	}
	return out, nil
}

func (r *AchievementRepository) FindPivot(userID, achievementID uint) (*model.UserAchievement, error) {
	var ua model.UserAchievement
	err := r.DB.Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&ua).Error
	return &ua, err
}

func (r *AchievementRepository) CountVisible() (int64, error) {
	var total int64
	err := r.DB.Model(&model.Achievement{}).Where("is_hidden = ?", false).Count(&total).Error
	return total, err
}

type unlockedStats struct {
	Unlocked int64
	Points   int64
}

// UnlockedStats 用户已解锁数量与总积分
func (r *AchievementRepository) UnlockedStats(userID uint) (int64, int64, error) {
	var s unlockedStats
	err := r.DB.Table("achievement_user").
		Select("COUNT(*) AS unlocked, COALESCE(SUM(achievements.points), 0) AS points").
		Joins("JOIN achievements ON achievements.id = achievement_user.achievement_id").
		Where("achievement_user.user_id = ? AND achievement_user.unlocked_at IS NOT NULL", userID).
		Scan(&s).Error
	return s.Unlocked, s.Points, err
}

// Unlock 解锁成就并把进度置为 100，返回是否为首次解锁
func (r *AchievementRepository) Unlock(userID, achievementID uint, at time.Time) (bool, error) {
	first := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserAchievement{
			AchievementID: achievementID,
			UserID:        userID,
			UnlockedAt:    &at,
			Progress:      100,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			first = true
			return nil
		}

		res = tx.Model(&model.UserAchievement{}).
			Where("user_id = ? AND achievement_id = ? AND unlocked_at IS NULL", userID, achievementID).
			Updates(map[string]interface{}{
				"unlocked_at": at,
				"progress":    100,
			})
		first = res.RowsAffected > 0
		return res.Error
	})
	return first, err
}

// SetProgress 写入进度，已解锁的记录保持不变
func (r *AchievementRepository) SetProgress(userID, achievementID uint, progress int) error {
	progress = model.ClampProgress(progress)
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserAchievement{
			AchievementID: achievementID,
			UserID:        userID,
			Progress:      progress,
		})
		if res.Error != nil || res.RowsAffected > 0 {
			return res.Error
		}
		return tx.Model(&model.UserAchievement{}).
			Where("user_id = ? AND achievement_id = ? AND unlocked_at IS NULL", userID, achievementID).
			Update("progress", progress).Error
	})
}
