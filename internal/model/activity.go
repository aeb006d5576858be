package model

import (
	"gorm.io/datatypes"
)

// SubjectKind 动态关联对象的类型
type SubjectKind string

const (
	SubjectNone        SubjectKind = ""
	SubjectGame        SubjectKind = "game"
	SubjectAchievement SubjectKind = "achievement"
	SubjectUser        SubjectKind = "user"
)

// Subject 动态的弱引用对象，不做外键约束
type Subject struct {
	Kind  SubjectKind `gorm:"column:subject_type;size:32;index:idx_activities_subject,priority:1" json:"type,omitempty"`
	RefID *uint       `gorm:"column:subject_id;index:idx_activities_subject,priority:2" json:"id,omitempty"`
}

func NoSubject() Subject { return Subject{} }

func GameSubject(id uint) Subject { return Subject{Kind: SubjectGame, RefID: &id} }

func AchievementSubject(id uint) Subject { return Subject{Kind: SubjectAchievement, RefID: &id} }

func UserSubject(id uint) Subject { return Subject{Kind: SubjectUser, RefID: &id} }

func (s Subject) IsNone() bool {
	return s.Kind == SubjectNone || s.RefID == nil
}

// ParseSubject 解析外部传入的 subject_type/subject_id，未知类型返回 false
func ParseSubject(kind string, id *uint) (Subject, bool) {
	if kind == "" || id == nil {
		return NoSubject(), kind == "" && id == nil
	}
	switch SubjectKind(kind) {
	case SubjectGame:
		return GameSubject(*id), true
	case SubjectAchievement:
		return AchievementSubject(*id), true
	case SubjectUser:
		return UserSubject(*id), true
	}
	return NoSubject(), false
}

// Activity 只追加的动态日志
type Activity struct {
	RecordModel
	UserID  uint           `gorm:"index;not null" json:"userId"`
	User    *User          `gorm:"foreignKey:UserID;constraint:-" json:"user,omitempty"`
	Type    string         `gorm:"size:50;not null" json:"type"`
	Action  string         `gorm:"size:255;not null" json:"action"`
	Subject Subject        `gorm:"embedded" json:"subject"`
	Data    datatypes.JSON `json:"data,omitempty"`

	Description string `gorm:"-" json:"description"`
	// SubjectDetail 解析后的关联对象摘要
	SubjectDetail interface{} `gorm:"-" json:"subjectDetail,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

// Describe 根据类型生成展示文案
func (a *Activity) Describe() string {
	switch a.Type {
	case "game":
		return "Played " + a.Action
	case "achievement":
		return "Unlocked achievement: " + a.Action
	default:
		return a.Action
	}
}
