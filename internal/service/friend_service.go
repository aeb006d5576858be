package service

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"sync/atomic"
	"time"
)

// PresenceChecker 判断用户是否在线（推送中心连接或 Redis 在线键）
type PresenceChecker interface {
	IsUserOnline(userID uint) bool
}

type FriendView struct {
	FriendshipID   uint       `json:"friendshipId"`
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Avatar         string     `json:"avatar,omitempty"`
	IsOnline       bool       `json:"isOnline"`
	FriendshipDate *time.Time `json:"friendshipDate"`
}

type FriendRequestView struct {
	RequestID   uint      `json:"requestId"`
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Avatar      string    `json:"avatar,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

type FriendsOverview struct {
	Friends         []FriendView        `json:"friends"`
	PendingRequests []FriendRequestView `json:"pendingRequests"`
	SentRequests    []FriendRequestView `json:"sentRequests"`
}

type FriendService struct {
	FriendRepo     *repository.FriendRepository
	UserRepo       *repository.UserRepository
	Presence       PresenceChecker
	Feed           FeedPublisher
	presenceWindow atomic.Int64
}

func NewFriendService(
	friendRepo *repository.FriendRepository,
	userRepo *repository.UserRepository,
	presence PresenceChecker,
	feed FeedPublisher,
	presenceWindow time.Duration,
) *FriendService {
	s := &FriendService{
		FriendRepo: friendRepo,
		UserRepo:   userRepo,
		Presence:   presence,
		Feed:       feed,
	}
	s.SetPresenceWindow(presenceWindow)
	return s
}

// SetPresenceWindow 配置热更新时调用
func (s *FriendService) SetPresenceWindow(window time.Duration) {
	s.presenceWindow.Store(int64(window))
}

func (s *FriendService) publish(userID uint, event string, data interface{}) {
	if s.Feed != nil {
		s.Feed.Publish(FriendsTopic(userID), WSMessage{Type: event, Data: data})
	}
}

// SendRequest 发送好友申请，同一对用户任意方向已有记录时返回冲突
func (s *FriendService) SendRequest(requesterID, recipientID uint) (*model.Friend, error) {
	if requesterID == recipientID {
		return nil, util.ErrFriendSelf
	}
	exists, err := s.UserRepo.Exists(recipientID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to send friend request")
	}
	if !exists {
		return nil, util.ErrUserNotFound
	}

	req := &model.Friend{
		UserID:      requesterID,
		FriendID:    recipientID,
		Status:      model.FriendPending,
		RequestedAt: time.Now(),
	}
	inserted, err := s.FriendRepo.CreateRequest(req)
	if err != nil {
		return nil, util.Wrap(err, "Failed to send friend request")
	}
	if !inserted {
		return nil, util.ErrFriendExists
	}

	s.publish(recipientID, EventFriendRequest, map[string]interface{}{
		"requestId": req.ID,
		"userId":    requesterID,
	})
	return req, nil
}

func (s *FriendService) load(id uint) (*model.Friend, error) {
	f, err := s.FriendRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, util.ErrFriendNotFound, "Failed to load friend request")
	}
	return f, nil
}

// Accept 只有接收人可以接受
func (s *FriendService) Accept(requestID, actingUserID uint) (*model.Friend, error) {
	f, err := s.load(requestID)
	if err != nil {
		return nil, err
	}
	if f.FriendID != actingUserID {
		return nil, util.ErrPermissionDenied
	}

	now := time.Now()
	ok, err := s.FriendRepo.Accept(f, actingUserID, now)
	if err != nil {
		return nil, util.Wrap(err, "Failed to accept friend request")
	}
	if !ok {
		return nil, util.ErrFriendNotPending
	}
	f.Status = model.FriendAccepted
	f.AcceptedAt = &now

	s.publish(f.UserID, EventFriendAccepted, map[string]interface{}{
		"requestId": f.ID,
		"userId":    actingUserID,
	})
	return f, nil
}

// Reject 只有接收人可以拒绝，拒绝即删除
func (s *FriendService) Reject(requestID, actingUserID uint) error {
	f, err := s.load(requestID)
	if err != nil {
		return err
	}
	if f.FriendID != actingUserID {
		return util.ErrPermissionDenied
	}
	if err := s.FriendRepo.Delete(f); err != nil {
		return util.Wrap(err, "Failed to reject friend request")
	}
	s.publish(f.UserID, EventFriendRemoved, map[string]interface{}{"requestId": f.ID, "userId": actingUserID})
	return nil
}

// Remove 任意一方都可以删除关系，不论状态
func (s *FriendService) Remove(requestID, actingUserID uint) error {
	f, err := s.load(requestID)
	if err != nil {
		return err
	}
	if !f.Involves(actingUserID) {
		return util.ErrPermissionDenied
	}
	if err := s.FriendRepo.Delete(f); err != nil {
		return util.Wrap(err, "Failed to remove friend")
	}

	other := f.UserID
	if other == actingUserID {
		other = f.FriendID
	}
	s.publish(other, EventFriendRemoved, map[string]interface{}{"requestId": f.ID, "userId": actingUserID})
	return nil
}

func (s *FriendService) isOnline(u *model.User, now time.Time) bool {
	if u.IsOnline(time.Duration(s.presenceWindow.Load()), now) {
		return true
	}
	return s.Presence != nil && s.Presence.IsUserOnline(u.ID)
}

// ListFriends 已接受的好友，展示对方信息
func (s *FriendService) ListFriends(userID uint) ([]FriendView, error) {
	rows, err := s.FriendRepo.ListAccepted(userID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load friends")
	}

	now := time.Now()
	views := make([]FriendView, 0, len(rows))
	for i := range rows {
		other := rows[i].Other(userID)
		if other == nil {
			continue
		}
		views = append(views, FriendView{
			FriendshipID:   rows[i].ID,
			ID:             other.ID,
			Name:           other.Name,
			Email:          other.Email,
			Avatar:         other.Avatar,
			IsOnline:       s.isOnline(other, now),
			FriendshipDate: rows[i].AcceptedAt,
		})
	}
	return views, nil
}

func requestViews(rows []model.Friend, pick func(*model.Friend) *model.User) []FriendRequestView {
	views := make([]FriendRequestView, 0, len(rows))
	for i := range rows {
		u := pick(&rows[i])
		if u == nil {
			continue
		}
		views = append(views, FriendRequestView{
			RequestID:   rows[i].ID,
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			Avatar:      u.Avatar,
			RequestedAt: rows[i].RequestedAt,
		})
	}
	return views
}

// Overview 好友、收到的申请、发出的申请
func (s *FriendService) Overview(userID uint) (*FriendsOverview, error) {
	friends, err := s.ListFriends(userID)
	if err != nil {
		return nil, err
	}
	received, err := s.FriendRepo.PendingReceived(userID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load friend requests")
	}
	sent, err := s.FriendRepo.PendingSent(userID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load friend requests")
	}

	return &FriendsOverview{
		Friends:         friends,
		PendingRequests: requestViews(received, func(f *model.Friend) *model.User { return f.User }),
		SentRequests:    requestViews(sent, func(f *model.Friend) *model.User { return f.Friend }),
	}, nil
}
