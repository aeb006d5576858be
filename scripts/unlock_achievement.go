// 手动为用户解锁成就
//
// 成就条件的自动判定尚未实现，运营活动或测试数据需要时用此脚本补发。
// 首次解锁会写入一条 achievement 动态，重复执行不会重复记录。
//
// 用法: go run scripts/unlock_achievement.go -email player@example.com -achievement "First Victory"

package main

import (
	"flag"
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/service"
	"game_portal_backend/pkg/database"
	"game_portal_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	email := flag.String("email", "", "用户邮箱")
	name := flag.String("achievement", "", "成就名称")
	progress := flag.Int("progress", 100, "设置进度，100 表示解锁")
	flag.Parse()

	if *email == "" || *name == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	activity := service.NewActivityService(
		repository.NewActivityRepository(db),
		gameRepo,
		achievementRepo,
		userRepo,
		nil,
		nil,
		cfg.Realtime.SnapshotSize(),
	)
	achievements := service.NewAchievementService(achievementRepo, activity, nil)

	user, err := userRepo.FindByEmail(*email)
	if err != nil {
		log.Fatalf("找不到用户 %s: %v", *email, err)
	}

	var view *service.AchievementView
	if *progress >= 100 {
		view, err = achievements.UnlockByName(user.ID, *name)
	} else {
		target, findErr := achievementRepo.FindByName(*name)
		if findErr != nil {
			log.Fatalf("找不到成就 %q: %v", *name, findErr)
		}
		view, err = achievements.SetProgress(user.ID, target.ID, *progress)
	}
	if err != nil {
		log.Fatalf("更新成就失败: %v", err)
	}
	log.Printf("用户 %s 的成就 %q 进度 %d%%，已解锁: %v", user.Email, view.Name, view.Progress, view.IsUnlocked)
}
