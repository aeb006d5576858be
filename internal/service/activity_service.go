package service

import (
	"encoding/json"
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"game_portal_backend/pkg/logger"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ISOTimestamp 与前端 Date.toISOString 一致的格式
const ISOTimestamp = "2006-01-02T15:04:05.000Z"

type RecordInput struct {
	Type    string
	Action  string
	Subject model.Subject
	Data    map[string]interface{}
}

type ActivitySnapshot struct {
	Data      []model.Activity `json:"data"`
	Timestamp string           `json:"timestamp"`
}

type ActivityService struct {
	ActivityRepo    *repository.ActivityRepository
	GameRepo        *repository.GameRepository
	AchievementRepo *repository.AchievementRepository
	UserRepo        *repository.UserRepository
	Storage         *StorageService
	Feed            FeedPublisher
	snapshotSize    atomic.Int64
}

func NewActivityService(
	activityRepo *repository.ActivityRepository,
	gameRepo *repository.GameRepository,
	achievementRepo *repository.AchievementRepository,
	userRepo *repository.UserRepository,
	storage *StorageService,
	feed FeedPublisher,
	snapshotSize int,
) *ActivityService {
	s := &ActivityService{
		ActivityRepo:    activityRepo,
		GameRepo:        gameRepo,
		AchievementRepo: achievementRepo,
		UserRepo:        userRepo,
		Storage:         storage,
		Feed:            feed,
	}
	s.SetSnapshotSize(snapshotSize)
	return s
}

// SetSnapshotSize 配置热更新时调用
func (s *ActivityService) SetSnapshotSize(size int) {
	s.snapshotSize.Store(int64(size))
}

// Record 追加一条动态并推送给动态订阅者
func (s *ActivityService) Record(userID uint, in RecordInput) (*model.Activity, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.Action = strings.TrimSpace(in.Action)
	if in.Type == "" {
		return nil, util.FieldValidation("type", "The type field is required.")
	}
	if in.Action == "" {
		return nil, util.FieldValidation("action", "The action field is required.")
	}

	activity := &model.Activity{
		UserID:  userID,
		Type:    in.Type,
		Action:  in.Action,
		Subject: in.Subject,
	}
	if len(in.Data) > 0 {
		raw, err := json.Marshal(in.Data)
		if err != nil {
			return nil, util.FieldValidation("data", "The data field must be an object.")
		}
		activity.Data = datatypes.JSON(raw)
	}

	if err := s.ActivityRepo.Create(activity); err != nil {
		return nil, util.Wrap(err, "Failed to record activity")
	}

	logger.Log.Info("New activity created",
		zap.Uint("activityId", activity.ID),
		zap.Uint("userId", userID),
		zap.String("type", activity.Type),
		zap.String("action", activity.Action),
	)

	if s.Feed != nil {
		if full, err := s.ActivityRepo.FindByID(activity.ID); err == nil {
			presented := s.present([]model.Activity{*full})
			s.Feed.Publish(TopicActivity, WSMessage{Type: EventActivityCreated, Data: &presented[0]})
		}
	}
	return activity, nil
}

// List 最新在前
func (s *ActivityService) List(page, limit int) ([]model.Activity, int64, error) {
	activities, total, err := s.ActivityRepo.List(limit, (page-1)*limit)
	if err != nil {
		return nil, 0, util.Wrap(err, "Failed to load activities")
	}
	return s.present(activities), total, nil
}

// Snapshot 轮询接口使用的最新动态
func (s *ActivityService) Snapshot() (*ActivitySnapshot, error) {
	size := int(s.snapshotSize.Load())
	if size <= 0 {
		size = 50
	}
	activities, _, err := s.ActivityRepo.List(size, 0)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load activities")
	}
	return &ActivitySnapshot{
		Data:      s.present(activities),
		Timestamp: time.Now().UTC().Format(ISOTimestamp),
	}, nil
}

// Describe 生成动态的展示文案
func (s *ActivityService) Describe(a *model.Activity) string {
	return a.Describe()
}

// present 填充展示文案并批量解析关联对象
func (s *ActivityService) present(activities []model.Activity) []model.Activity {
	var gameIDs, achievementIDs, userIDs []uint
	for _, a := range activities {
		if a.Subject.IsNone() {
			continue
		}
		switch a.Subject.Kind {
		case model.SubjectGame:
			gameIDs = append(gameIDs, *a.Subject.RefID)
		case model.SubjectAchievement:
			achievementIDs = append(achievementIDs, *a.Subject.RefID)
		case model.SubjectUser:
			userIDs = append(userIDs, *a.Subject.RefID)
		}
	}

	games := map[uint]model.GameSummary{}
	if len(gameIDs) > 0 && s.GameRepo != nil {
		if list, err := s.GameRepo.FindByIDs(gameIDs); err == nil {
			for i := range list {
				list[i].Present(s.Storage.URLFunc())
				games[list[i].ID] = list[i].Summary()
			}
		}
	}
	achievements := map[uint]model.Achievement{}
	if len(achievementIDs) > 0 && s.AchievementRepo != nil {
		for _, id := range achievementIDs {
			if a, err := s.AchievementRepo.FindByID(id); err == nil {
				a.Requirements = nil
				achievements[id] = *a
			}
		}
	}
	users := map[uint]model.PublicUser{}
	if len(userIDs) > 0 && s.UserRepo != nil {
		if list, err := s.UserRepo.FindByIDs(userIDs); err == nil {
			for i := range list {
				p := list[i].Public()
				p.Email = ""
				users[p.ID] = p
			}
		}
	}

	for i := range activities {
		a := &activities[i]
		a.Description = a.Describe()
		if a.User != nil {
			a.User.Email = ""
		}
		if a.Subject.IsNone() {
			continue
		}
		id := *a.Subject.RefID
		switch a.Subject.Kind {
		case model.SubjectNone:
		case model.SubjectGame:
			if g, ok := games[id]; ok {
				a.SubjectDetail = g
			}
		case model.SubjectAchievement:
			if ach, ok := achievements[id]; ok {
				a.SubjectDetail = ach
			}
		case model.SubjectUser:
			if u, ok := users[id]; ok {
				a.SubjectDetail = u
			}
		}
	}
	return activities
}
