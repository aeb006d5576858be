package repository

import (
	"context"
	"encoding/json"
	"game_portal_backend/internal/model"
	"game_portal_backend/pkg/database"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const globalCacheTTL = 30 * time.Second

// GlobalRow 全站排行榜的聚合行
type GlobalRow struct {
	UserID      uint   `json:"userId"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	TotalScore  int64  `json:"totalScore"`
	GamesPlayed int64  `json:"gamesPlayed"`
}

type LeaderboardRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewLeaderboardRepository(db *gorm.DB, rdb *redis.Client) *LeaderboardRepository {
	return &LeaderboardRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

func globalCacheKey(limit int) string {
	return database.RedisKey("leaderboard", "global", limit)
}

// Global 按用户汇总总分与记录数，limit<=0 表示不限
func (r *LeaderboardRepository) Global(limit int) ([]GlobalRow, error) {
	if r.Redis != nil && limit > 0 {
		if cached, err := r.Redis.Get(r.ctx, globalCacheKey(limit)).Bytes(); err == nil {
			var rows []GlobalRow
			if json.Unmarshal(cached, &rows) == nil {
				return rows, nil
			}
		}
	}

	var rows []GlobalRow
	db := r.DB.Table("leaderboards").
		Select("leaderboards.user_id AS user_id, users.name AS name, users.avatar AS avatar, SUM(leaderboards.score) AS total_score, COUNT(*) AS games_played").
		Joins("JOIN users ON users.id = leaderboards.user_id AND users.deleted_at IS NULL").
		Group("leaderboards.user_id, users.name, users.avatar").
		Order("total_score DESC").Order("leaderboards.user_id ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}

	if r.Redis != nil && limit > 0 {
		if data, err := json.Marshal(rows); err == nil {
			r.Redis.Set(r.ctx, globalCacheKey(limit), data, globalCacheTTL)
		}
	}
	return rows, nil
}

func (r *LeaderboardRepository) invalidateGlobal() {
	if r.Redis == nil {
		return
	}
	iter := r.Redis.Scan(r.ctx, 0, database.RedisKey("leaderboard", "global", "*"), 100).Iterator()
	for iter.Next(r.ctx) {
		r.Redis.Del(r.ctx, iter.Val())
	}
}

// ForGame 单个游戏的成绩，分数降序，同分先到者在前
func (r *LeaderboardRepository) ForGame(gameID uint, limit int) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.DB.Preload("User").
		Where("game_id = ?", gameID).
		Order("score DESC").Order("played_at ASC").Order("id ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Personal 用户自己的成绩
func (r *LeaderboardRepository) Personal(userID uint, limit int) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.DB.Preload("Game").
		Where("user_id = ?", userID).
		Order("score DESC").Order("played_at DESC").Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *LeaderboardRepository) Best(userID, gameID uint) (int64, bool, error) {
	var best model.PersonalBest
	err := r.DB.Where("user_id = ? AND game_id = ?", userID, gameID).First(&best).Error
	if err == gorm.ErrRecordNotFound {
		return 0, false, nil
	}
	return best.Score, err == nil, err
}

// SubmitScore 仅当分数超过个人最高分时写入历史
// 个人最高分行做条件更新，与历史插入在同一事务内
func (r *LeaderboardRepository) SubmitScore(entry *model.LeaderboardEntry) (bool, error) {
	recorded := false
	now := entry.PlayedAt
	if now.IsZero() {
		now = time.Now()
		entry.PlayedAt = now
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.PersonalBest{}).
			Where("user_id = ? AND game_id = ? AND score < ?", entry.UserID, entry.GameID, entry.Score).
			Updates(map[string]interface{}{
				"score":      entry.Score,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// 没有更低的最高分，可能是首次提交
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.PersonalBest{
				UserID:    entry.UserID,
				GameID:    entry.GameID,
				Score:     entry.Score,
				UpdatedAt: now,
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
		}

		recorded = true
		return tx.Create(entry).Error
	})
	if err != nil {
		return false, err
	}

	if recorded {
		r.invalidateGlobal()
	}
	return recorded, nil
}
