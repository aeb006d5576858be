package model

import "time"

const MaxMessageLength = 1000

// Message 私信，内容写入后不可修改，已读状态只会从 false 变为 true
type Message struct {
	RecordModel
	SenderID   uint       `gorm:"index:idx_messages_pair,priority:1;not null" json:"senderId"`
	Sender     *User      `gorm:"foreignKey:SenderID;constraint:-" json:"sender,omitempty"`
	ReceiverID uint       `gorm:"index:idx_messages_pair,priority:2;index;not null" json:"receiverId"`
	Receiver   *User      `gorm:"foreignKey:ReceiverID;constraint:-" json:"receiver,omitempty"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IsRead     bool       `gorm:"default:false;index" json:"isRead"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

// PartnerID 相对于 userID 的对话另一方
func (m *Message) PartnerID(userID uint) uint {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
