package service

import (
	"encoding/json"
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"game_portal_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// RequirementEvaluator 根据成就的 requirements 计算用户进度
// 规则引擎尚未实现，默认实现不做任何判断
type RequirementEvaluator interface {
	Evaluate(userID uint, achievement *model.Achievement) (progress int, unlocked bool, err error)
}

type NoopEvaluator struct{}

func (NoopEvaluator) Evaluate(uint, *model.Achievement) (int, bool, error) {
	return 0, false, nil
}

type AchievementView struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Icon         string          `json:"icon"`
	BadgeColor   string          `json:"badgeColor"`
	Points       int             `json:"points"`
	Type         string          `json:"type"`
	Requirements json.RawMessage `json:"requirements,omitempty"`
	IsUnlocked   bool            `json:"isUnlocked"`
	UnlockedAt   *time.Time      `json:"unlockedAt"`
	Progress     int             `json:"progress"`
}

type AchievementStats struct {
	TotalAchievements    int64 `json:"totalAchievements"`
	UnlockedAchievements int64 `json:"unlockedAchievements"`
	TotalPoints          int64 `json:"totalPoints"`
}

type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	Activity        *ActivityService
	Evaluator       RequirementEvaluator
}

func NewAchievementService(achievementRepo *repository.AchievementRepository, activity *ActivityService, evaluator RequirementEvaluator) *AchievementService {
	if evaluator == nil {
		evaluator = NoopEvaluator{}
	}
	return &AchievementService{
		AchievementRepo: achievementRepo,
		Activity:        activity,
		Evaluator:       evaluator,
	}
}

func achievementView(a *model.Achievement, pivot *model.UserAchievement, withRequirements bool) AchievementView {
	v := AchievementView{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Icon:        a.Icon,
		BadgeColor:  a.BadgeColor,
		Points:      a.Points,
		Type:        a.Type,
	}
	if withRequirements && len(a.Requirements) > 0 {
		v.Requirements = json.RawMessage(a.Requirements)
	}
	if pivot != nil {
		v.IsUnlocked = pivot.Unlocked()
		v.UnlockedAt = pivot.UnlockedAt
		v.Progress = pivot.Progress
	}
	return v
}

// List 可见成就及用户进度，typ 为 all 或空时不过滤
func (s *AchievementService) List(userID uint, typ string) ([]AchievementView, error) {
	achievements, err := s.AchievementRepo.ListVisible(typ)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load achievements")
	}
	progress, err := s.AchievementRepo.Progress(userID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load achievements")
	}

	views := make([]AchievementView, 0, len(achievements))
	for i := range achievements {
		var pivot *model.UserAchievement
		if p, ok := progress[achievements[i].ID]; ok {
			pivot = &p
		}
		views = append(views, achievementView(&achievements[i], pivot, false))
	}
	return views, nil
}

func (s *AchievementService) Stats(userID uint) (*AchievementStats, error) {
	total, err := s.AchievementRepo.CountVisible()
	if err != nil {
		return nil, util.Wrap(err, "Failed to load achievement stats")
	}
	unlocked, points, err := s.AchievementRepo.UnlockedStats(userID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load achievement stats")
	}
	return &AchievementStats{
		TotalAchievements:    total,
		UnlockedAchievements: unlocked,
		TotalPoints:          points,
	}, nil
}

// Show 单个成就，隐藏成就在解锁前不可见
func (s *AchievementService) Show(userID, achievementID uint) (*AchievementView, error) {
	a, err := s.AchievementRepo.FindByID(achievementID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrAchievementAbsent, "Failed to load achievement")
	}
	pivot, err := s.AchievementRepo.FindPivot(userID, achievementID)
	if err != nil {
		pivot = nil
	}
	if a.IsHidden && !pivot.Unlocked() {
		return nil, util.ErrAchievementAbsent
	}
	v := achievementView(a, pivot, true)
	return &v, nil
}

// Unlock 解锁成就，首次解锁时记录一条成就动态
func (s *AchievementService) Unlock(userID, achievementID uint) (*AchievementView, error) {
	a, err := s.AchievementRepo.FindByID(achievementID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrAchievementAbsent, "Failed to load achievement")
	}

	first, err := s.AchievementRepo.Unlock(userID, a.ID, time.Now())
	if err != nil {
		return nil, util.Wrap(err, "Failed to unlock achievement")
	}

	if first && s.Activity != nil {
		_, err := s.Activity.Record(userID, RecordInput{
			Type:    "achievement",
			Action:  a.Name,
			Subject: model.AchievementSubject(a.ID),
			Data:    map[string]interface{}{"points": a.Points},
		})
		if err != nil {
			logger.Log.Warn("Record achievement activity failed", zap.Error(err), zap.Uint("achievementId", a.ID))
		}
	}

	pivot, err := s.AchievementRepo.FindPivot(userID, a.ID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load achievement")
	}
	v := achievementView(a, pivot, true)
	return &v, nil
}

// SetProgress 设置进度，达到 100 视为解锁
func (s *AchievementService) SetProgress(userID, achievementID uint, progress int) (*AchievementView, error) {
	progress = model.ClampProgress(progress)
	if progress >= 100 {
		return s.Unlock(userID, achievementID)
	}

	a, err := s.AchievementRepo.FindByID(achievementID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrAchievementAbsent, "Failed to load achievement")
	}
	if err := s.AchievementRepo.SetProgress(userID, a.ID, progress); err != nil {
		return nil, util.Wrap(err, "Failed to update progress")
	}
	pivot, err := s.AchievementRepo.FindPivot(userID, a.ID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load achievement")
	}
	v := achievementView(a, pivot, true)
	return &v, nil
}

// UnlockByName 供运维脚本按名称解锁
func (s *AchievementService) UnlockByName(userID uint, name string) (*AchievementView, error) {
	a, err := s.AchievementRepo.FindByName(name)
	if err != nil {
		return nil, notFoundOr(err, util.ErrAchievementAbsent, "Failed to load achievement")
	}
	return s.Unlock(userID, a.ID)
}

// Evaluate 用评估器刷新用户所有成就的进度
func (s *AchievementService) Evaluate(userID uint) error {
	achievements, err := s.AchievementRepo.ListVisible("all")
	if err != nil {
		return util.Wrap(err, "Failed to load achievements")
	}
	for i := range achievements {
		progress, unlocked, err := s.Evaluator.Evaluate(userID, &achievements[i])
		if err != nil {
			return util.Wrap(err, "Failed to evaluate achievement")
		}
		switch {
		case unlocked:
			_, err = s.Unlock(userID, achievements[i].ID)
		case progress > 0:
			_, err = s.SetProgress(userID, achievements[i].ID, progress)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
