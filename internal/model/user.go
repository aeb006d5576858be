package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Name                   string     `gorm:"size:100;not null" json:"name"`
	Email                  string     `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password               string     `gorm:"size:100;not null" json:"-"`
	IsAdmin                bool       `gorm:"default:false;not null" json:"isAdmin"`
	Avatar                 string     `gorm:"size:255" json:"avatar"`
	TwoFactorSecret        string     `gorm:"type:text" json:"-"`
	TwoFactorRecoveryCodes string     `gorm:"type:text" json:"-"`
	TwoFactorConfirmedAt   *time.Time `json:"-"`
	LastSeen               *time.Time `json:"lastSeen,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// PublicUser 对外展示的用户摘要
type PublicUser struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// IsOnline 最近一次请求在窗口期内视为在线
func (u *User) IsOnline(window time.Duration, now time.Time) bool {
	return u.LastSeen != nil && now.Sub(*u.LastSeen) <= window
}
