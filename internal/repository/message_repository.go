package repository

import (
	"game_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.DB.Create(msg).Error
}

// Conversation 两人之间的全部消息，按时间正序
func (r *MessageRepository) Conversation(userID, partnerID uint) ([]model.Message, error) {
	var msgs []model.Message
	err := r.DB.Preload("Sender").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID).
		Order("created_at ASC").Order("id ASC").
		Find(&msgs).Error
	return msgs, err
}

// MarkRead 把 partner 发给 user 的未读消息标为已读
func (r *MessageRepository) MarkRead(userID, partnerID uint, at time.Time) (int64, error) {
	res := r.DB.Model(&model.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": at,
		})
	return res.RowsAffected, res.Error
}

// Involving 用户收发的全部消息，最新在前
func (r *MessageRepository) Involving(userID uint) ([]model.Message, error) {
	var msgs []model.Message
	err := r.DB.Preload("Sender").Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&msgs).Error
	return msgs, err
}

type unreadRow struct {
	SenderID uint
	Count    int64
}

// UnreadBySender 按发送人统计发给 user 的未读数
func (r *MessageRepository) UnreadBySender(userID uint) (map[uint]int64, error) {
	var rows []unreadRow
	err := r.DB.Model(&model.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.Count
	}
	return counts, nil
}
