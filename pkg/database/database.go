package database

import (
	"fmt"
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models 需要自动迁移的全部模型
var Models = []interface{}{
	&model.User{},
	&model.Game{},
	&model.Friend{},
	&model.Message{},
	&model.Activity{},
	&model.LeaderboardEntry{},
	&model.PersonalBest{},
	&model.Achievement{},
	&model.UserAchievement{},
	&model.Bookmark{},
	&model.Favorite{},
}

func dialector(cfg *config.DatabaseConfig) gorm.Dialector {
	if cfg.Driver == "postgres" {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn)
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)
	return mysql.Open(dsn)
}

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	logMode := logger.Warn
	if cfg.Server.Mode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector(&cfg.Database), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认不迁移，除非显式传入 -migrate
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")

		if err := Seed(db, &cfg.Admin); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}
