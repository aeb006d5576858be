package service

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"strings"
	"time"
)

// UserService 处理用户搜索、在线状态与管理员标志
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		UserRepo: userRepo,
	}
}

// Search 添加好友时的用户搜索，关键词过短返回空列表
func (s *UserService) Search(currentUserID uint, query string) ([]model.PublicUser, error) {
	query = strings.TrimSpace(query)
	result := []model.PublicUser{}
	if len([]rune(query)) < util.UserSearchMinLength {
		return result, nil
	}

	users, err := s.UserRepo.Search(query, currentUserID, util.UserSearchLimit)
	if err != nil {
		return nil, util.Wrap(err, "Failed to search users")
	}
	for i := range users {
		result = append(result, users[i].Public())
	}
	return result, nil
}

func (s *UserService) TouchLastSeen(userID uint) error {
	return s.UserRepo.TouchLastSeen(userID, time.Now())
}

func (s *UserService) List(page, limit int) ([]model.User, int64, error) {
	users, total, err := s.UserRepo.List(limit, (page-1)*limit)
	if err != nil {
		return nil, 0, util.Wrap(err, "Failed to load users")
	}
	return users, total, nil
}

// ToggleAdmin 翻转目标用户的管理员标志，不允许修改自己
func (s *UserService) ToggleAdmin(actorID, targetID uint) (*model.User, error) {
	if actorID == targetID {
		return nil, util.ErrSelfAdminToggle
	}

	user, err := s.UserRepo.FindByID(targetID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrUserNotFound, "Failed to load user")
	}

	user.IsAdmin = !user.IsAdmin
	if _, err := s.UserRepo.SetAdmin(user.ID, user.IsAdmin); err != nil {
		return nil, util.Wrap(err, "Failed to update user")
	}
	return user, nil
}
