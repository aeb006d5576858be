package database_test

import (
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/testutil"
	"game_portal_backend/pkg/database"
	"testing"
)

func TestSeed(t *testing.T) {
	db := testutil.NewDB(t)
	admin := &config.AdminConfig{Email: "admin@example.com", Password: "password"}

	for i := 0; i < 2; i++ {
		if err := database.Seed(db, admin); err != nil {
			t.Fatalf("Seed() #%d error = %v", i+1, err)
		}
	}

	var achievements int64
	db.Model(&model.Achievement{}).Count(&achievements)
	if achievements != int64(len(database.DefaultAchievements)) {
		t.Errorf("achievements = %d, want %d", achievements, len(database.DefaultAchievements))
	}
	var hidden int64
	db.Model(&model.Achievement{}).Where("is_hidden = ?", true).Count(&hidden)
	if hidden != 1 {
		t.Errorf("hidden achievements = %d, want 1", hidden)
	}

	var users []model.User
	db.Where("email = ?", admin.Email).Find(&users)
	if len(users) != 1 || !users[0].IsAdmin || users[0].Name != "Admin User" {
		t.Errorf("admin users = %+v, want one admin named Admin User", users)
	}
	if users[0].Password == admin.Password {
		t.Error("admin password stored in clear")
	}
}

func TestSeedWithoutAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	if err := database.Seed(db, &config.AdminConfig{}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	var users int64
	db.Model(&model.User{}).Count(&users)
	if users != 0 {
		t.Errorf("users = %d, want 0", users)
	}
}
