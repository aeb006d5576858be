package model

import (
	"time"

	"gorm.io/datatypes"
)

// Achievement 成就定义，静态数据
type Achievement struct {
	RecordModel
	Name         string         `gorm:"size:191;uniqueIndex;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Icon         string         `gorm:"size:50;default:trophy" json:"icon"`
	BadgeColor   string         `gorm:"size:50;default:bg-yellow-500" json:"badgeColor"`
	Points       int            `gorm:"default:0" json:"points"`
	Type         string         `gorm:"size:50;index;not null" json:"type"`
	Requirements datatypes.JSON `json:"requirements,omitempty"`
	IsHidden     bool           `gorm:"default:false" json:"isHidden"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 用户成就中间表，unlocked_at 非空才算解锁
type UserAchievement struct {
	RecordModel
	AchievementID uint         `gorm:"uniqueIndex:idx_achievement_user,priority:1;not null" json:"achievementId"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID;constraint:-" json:"achievement,omitempty"`
	UserID        uint         `gorm:"uniqueIndex:idx_achievement_user,priority:2;index;not null" json:"userId"`
	UnlockedAt    *time.Time   `json:"unlockedAt,omitempty"`
	Progress      int          `gorm:"default:0" json:"progress"`
}

func (UserAchievement) TableName() string {
	return "achievement_user"
}

func (ua *UserAchievement) Unlocked() bool {
	return ua != nil && ua.UnlockedAt != nil
}

// ClampProgress 进度限定在 0-100
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
