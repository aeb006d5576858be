package model

import "time"

// LeaderboardEntry 每次成绩提交一行，保留历史
type LeaderboardEntry struct {
	RecordModel
	UserID   uint      `gorm:"index:idx_leaderboards_user_game,priority:1;not null" json:"userId"`
	User     *User     `gorm:"foreignKey:UserID;constraint:-" json:"user,omitempty"`
	GameID   uint      `gorm:"index:idx_leaderboards_user_game,priority:2;index:idx_leaderboards_game_score,priority:1;not null" json:"gameId"`
	Game     *Game     `gorm:"foreignKey:GameID;constraint:-" json:"game,omitempty"`
	Score    int64     `gorm:"index:idx_leaderboards_game_score,priority:2;not null" json:"score"`
	PlayedAt time.Time `gorm:"index" json:"playedAt"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboards"
}

// PersonalBest 用户在某个游戏的最高分闸门行
// 提交成绩时对该行做条件更新，替代先查后写
type PersonalBest struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false"`
	GameID    uint      `gorm:"primaryKey;autoIncrement:false"`
	Score     int64     `gorm:"not null"`
	UpdatedAt time.Time
}

func (PersonalBest) TableName() string {
	return "leaderboard_bests"
}
