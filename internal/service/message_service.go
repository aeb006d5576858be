package service

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"game_portal_backend/pkg/security"
	"sort"
	"time"
	"unicode/utf8"
)

type LatestMessage struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
	SenderID  uint      `json:"senderId"`
}

type ConversationSummary struct {
	User          model.PublicUser `json:"user"`
	LatestMessage LatestMessage    `json:"latestMessage"`
	UnreadCount   int64            `json:"unreadCount"`
}

type Conversation struct {
	Messages  []model.Message  `json:"messages"`
	OtherUser model.PublicUser `json:"otherUser"`
}

type MessageService struct {
	MessageRepo *repository.MessageRepository
	UserRepo    *repository.UserRepository
	Feed        FeedPublisher
}

func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository, feed FeedPublisher) *MessageService {
	return &MessageService{
		MessageRepo: messageRepo,
		UserRepo:    userRepo,
		Feed:        feed,
	}
}

// SendMessage 内容去除 HTML 后入库，长度按字符计算
func (s *MessageService) SendMessage(senderID, receiverID uint, content string) (*model.Message, error) {
	content = security.SanitizeText(content)
	if content == "" {
		return nil, util.FieldValidation("content", "The content field is required.")
	}
	// 按入库后的文本计算长度
	if utf8.RuneCountInString(content) > model.MaxMessageLength {
		return nil, util.FieldValidation("content", "The content may not be greater than 1000 characters.")
	}

	receiver, err := s.UserRepo.FindByID(receiverID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrUserNotFound, "Failed to send message")
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Content:    content,
		IsRead:     false,
	}
	if err := s.MessageRepo.Create(msg); err != nil {
		return nil, util.Wrap(err, "Failed to send message")
	}

	if s.Feed != nil {
		event := WSMessage{Type: EventMessageCreated, Data: msg}
		s.Feed.Publish(MessagesTopic(receiver.ID), event)
		if receiver.ID != senderID {
			s.Feed.Publish(MessagesTopic(senderID), event)
		}
	}
	return msg, nil
}

// ListConversations 按对方分组，取最新一条，统计未读，最新会话在前
func (s *MessageService) ListConversations(userID uint) ([]ConversationSummary, error) {
	msgs, err := s.MessageRepo.Involving(userID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load conversations")
	}

	index := map[uint]int{}
	summaries := []ConversationSummary{}
	for i := range msgs {
		m := &msgs[i]
		partnerID := m.PartnerID(userID)
		pos, seen := index[partnerID]
		if !seen {
			partner := m.Sender
			if m.SenderID == userID {
				partner = m.Receiver
			}
			var pub model.PublicUser
			if partner != nil {
				pub = partner.Public()
			} else {
				pub = model.PublicUser{ID: partnerID}
			}
			// 消息按时间倒序，第一次出现即最新一条
			summaries = append(summaries, ConversationSummary{
				User: pub,
				LatestMessage: LatestMessage{
					Content:   m.Content,
					CreatedAt: m.CreatedAt,
					IsRead:    m.IsRead,
					SenderID:  m.SenderID,
				},
			})
			pos = len(summaries) - 1
			index[partnerID] = pos
		}
		if m.ReceiverID == userID && !m.IsRead {
			summaries[pos].UnreadCount++
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LatestMessage.CreatedAt.After(summaries[j].LatestMessage.CreatedAt)
	})
	return summaries, nil
}

func (s *MessageService) partner(partnerID uint) (*model.User, error) {
	partner, err := s.UserRepo.FindByID(partnerID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrUserNotFound, "Failed to load conversation")
	}
	return partner, nil
}

// OpenConversation 返回完整对话，并把对方发给我的未读消息标为已读
func (s *MessageService) OpenConversation(userID, partnerID uint) (*Conversation, error) {
	partner, err := s.partner(partnerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	marked, err := s.MessageRepo.MarkRead(userID, partner.ID, now)
	if err != nil {
		return nil, util.Wrap(err, "Failed to update read status")
	}

	msgs, err := s.MessageRepo.Conversation(userID, partner.ID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load conversation")
	}

	if marked > 0 && s.Feed != nil {
		s.Feed.Publish(MessagesTopic(partner.ID), WSMessage{
			Type: EventMessagesRead,
			Data: map[string]interface{}{
				"readerId": userID,
				"readAt":   now,
			},
		})
	}

	return &Conversation{Messages: msgs, OtherUser: partner.Public()}, nil
}

// Poll 与 OpenConversation 相同的快照，不修改已读状态
func (s *MessageService) Poll(userID, partnerID uint) ([]model.Message, error) {
	partner, err := s.partner(partnerID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.MessageRepo.Conversation(userID, partner.ID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load conversation")
	}
	return msgs, nil
}

type UnreadSummary struct {
	Total    int64          `json:"total"`
	BySender map[uint]int64 `json:"bySender"`
}

// Unread 未读消息数，用于导航栏提醒
func (s *MessageService) Unread(userID uint) (*UnreadSummary, error) {
	counts, err := s.MessageRepo.UnreadBySender(userID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load unread messages")
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return &UnreadSummary{Total: total, BySender: counts}, nil
}
