// Package testutil 测试用的数据库、Redis 和基础数据
package testutil

import (
	"fmt"
	"game_portal_backend/internal/model"
	"game_portal_backend/pkg/database"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 每个测试一个独立的 SQLite 文件，已完成迁移
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "portal.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func CreateUser(t testing.TB, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "x",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func CreateAdmin(t testing.TB, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := CreateUser(t, db, name)
	if err := db.Model(u).Update("is_admin", true).Error; err != nil {
		t.Fatalf("promote %s: %v", name, err)
	}
	u.IsAdmin = true
	return u
}

// CreateGame 上架的游戏，slug 由标题生成，同一测试内标题不能重复
func CreateGame(t testing.TB, db *gorm.DB, title, category string) *model.Game {
	t.Helper()
	g := &model.Game{
		Title:    title,
		Slug:     slug.Make(title),
		Category: category,
		Active:   true,
	}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("create game %s: %v", title, err)
	}
	return g
}
