package database

import (
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/model"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultAchievements 初始成就目录
var DefaultAchievements = []model.Achievement{
	{Name: "First Victory", Description: "Win your first game", Icon: "trophy", BadgeColor: "bg-yellow-500", Points: 10, Type: "game", Requirements: datatypes.JSON(`{"wins":1}`)},
	{Name: "Social Butterfly", Description: "Add 10 friends", Icon: "users", BadgeColor: "bg-blue-500", Points: 25, Type: "social", Requirements: datatypes.JSON(`{"friends":10}`)},
	{Name: "Speed Demon", Description: "Complete a game in under 5 minutes", Icon: "zap", BadgeColor: "bg-red-500", Points: 50, Type: "game", Requirements: datatypes.JSON(`{"time":300}`)},
	{Name: "Master Collector", Description: "Bookmark 50 games", Icon: "bookmark", BadgeColor: "bg-purple-500", Points: 30, Type: "milestone", Requirements: datatypes.JSON(`{"bookmarks":50}`)},
	{Name: "Secret Achievement", Description: "Discover a hidden feature", Icon: "eye", BadgeColor: "bg-gray-500", Points: 100, Type: "milestone", Requirements: datatypes.JSON(`{"secret":true}`), IsHidden: true},
}

// Seed 成就目录为空时写入默认成就，配置了管理员邮箱时创建管理员
func Seed(db *gorm.DB, admin *config.AdminConfig) error {
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count == 0 {
		for _, a := range DefaultAchievements {
			a := a
			if err := db.Create(&a).Error; err != nil {
				return err
			}
		}
		log.Println("Default achievements seeded")
	}

	if admin == nil || admin.Email == "" || admin.Password == "" {
		return nil
	}

	var existing int64
	db.Model(&model.User{}).Where("email = ?", admin.Email).Count(&existing)
	if existing > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := admin.Name
	if name == "" {
		name = "Admin User"
	}

	if err := db.Create(&model.User{
		Name:     name,
		Email:    admin.Email,
		Password: string(hashed),
		IsAdmin:  true,
	}).Error; err != nil {
		return err
	}
	log.Printf("Admin account %s created", admin.Email)
	return nil
}
