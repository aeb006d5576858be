package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
)

// Friend 好友关系，UserID 为申请人，FriendID 为接收人
// PairKey 对无序用户对唯一，保证同一对用户只有一行
type Friend struct {
	RecordModel
	UserID      uint         `gorm:"index;not null" json:"userId"`
	User        *User        `gorm:"foreignKey:UserID;constraint:-" json:"user,omitempty"`
	FriendID    uint         `gorm:"index;not null" json:"friendId"`
	Friend      *User        `gorm:"foreignKey:FriendID;constraint:-" json:"friend,omitempty"`
	PairKey     string       `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Status      FriendStatus `gorm:"size:16;index;not null;default:pending" json:"status"`
	RequestedAt time.Time    `json:"requestedAt"`
	AcceptedAt  *time.Time   `json:"acceptedAt,omitempty"`
}

func (Friend) TableName() string {
	return "friends"
}

// FriendPairKey 无序用户对的唯一键，小 id 在前
func FriendPairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func (f *Friend) BeforeCreate(tx *gorm.DB) error {
	f.PairKey = FriendPairKey(f.UserID, f.FriendID)
	return nil
}

// Involves 用户是否为关系的任意一方
func (f *Friend) Involves(userID uint) bool {
	return f.UserID == userID || f.FriendID == userID
}

// Other 返回关系中另一方的用户
func (f *Friend) Other(userID uint) *User {
	if f.UserID == userID {
		return f.Friend
	}
	return f.User
}
