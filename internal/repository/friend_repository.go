package repository

import (
	"context"
	"game_portal_backend/internal/model"
	"game_portal_backend/pkg/database"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FriendRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewFriendRepository(db *gorm.DB, rdb *redis.Client) *FriendRepository {
	return &FriendRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

func friendCacheKey(userID uint) string {
	return database.RedisKey("friends", userID)
}

func (r *FriendRepository) invalidate(ids ...uint) {
	if r.Redis == nil {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, friendCacheKey(id))
	}
	r.Redis.Del(r.ctx, keys...)
}

// CreateRequest 插入好友申请，同一无序用户对已有记录时不插入并返回 false
func (r *FriendRepository) CreateRequest(f *model.Friend) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *FriendRepository) FindByID(id uint) (*model.Friend, error) {
	var f model.Friend
	err := r.DB.Preload("User").Preload("Friend").First(&f, id).Error
	return &f, err
}

func (r *FriendRepository) FindByPair(a, b uint) (*model.Friend, error) {
	var f model.Friend
	err := r.DB.Where("pair_key = ?", model.FriendPairKey(a, b)).First(&f).Error
	return &f, err
}

// Accept 仅当申请仍为 pending 且操作者是接收人时生效
func (r *FriendRepository) Accept(f *model.Friend, recipientID uint, at time.Time) (bool, error) {
	res := r.DB.Model(&model.Friend{}).
		Where("id = ? AND friend_id = ? AND status = ?", f.ID, recipientID, model.FriendPending).
		Updates(map[string]interface{}{
			"status":      model.FriendAccepted,
			"accepted_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		r.invalidate(f.UserID, f.FriendID)
	}
	return res.RowsAffected > 0, nil
}

func (r *FriendRepository) Delete(f *model.Friend) error {
	err := r.DB.Delete(&model.Friend{}, f.ID).Error
	if err == nil {
		// 清除关系缓存
		r.invalidate(f.UserID, f.FriendID)
	}
	return err
}

// ListAccepted 用户作为任意一方的已接受关系
func (r *FriendRepository) ListAccepted(userID uint) ([]model.Friend, error) {
	var friends []model.Friend
	err := r.DB.Preload("User").Preload("Friend").
		Where("status = ?", model.FriendAccepted).
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Order("accepted_at DESC").
		Find(&friends).Error
	return friends, err
}

// PendingReceived 别人发给我的待处理申请
func (r *FriendRepository) PendingReceived(userID uint) ([]model.Friend, error) {
	var reqs []model.Friend
	err := r.DB.Preload("User").
		Where("friend_id = ? AND status = ?", userID, model.FriendPending).
		Order("requested_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// PendingSent 我发出的待处理申请
func (r *FriendRepository) PendingSent(userID uint) ([]model.Friend, error) {
	var reqs []model.Friend
	err := r.DB.Preload("Friend").
		Where("user_id = ? AND status = ?", userID, model.FriendPending).
		Order("requested_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// FriendIDs 已接受好友的 ID 列表
func (r *FriendRepository) FriendIDs(userID uint) ([]uint, error) {
	var rows []model.Friend
	err := r.DB.Select("user_id", "friend_id").
		Where("status = ?", model.FriendAccepted).
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, f := range rows {
		if f.UserID == userID {
			ids = append(ids, f.FriendID)
		} else {
			ids = append(ids, f.UserID)
		}
	}
	return ids, nil
}

// FriendIDsCached 获取好友 ID 列表 (带缓存)
func (r *FriendRepository) FriendIDsCached(userID uint) ([]uint, error) {
	if r.Redis == nil {
		return r.FriendIDs(userID)
	}

	key := friendCacheKey(userID)
	cached, err := r.Redis.SMembers(r.ctx, key).Result()
	if err == nil && len(cached) > 0 {
		ids := make([]uint, 0, len(cached))
		for _, s := range cached {
			id, _ := strconv.ParseUint(s, 10, 64)
			if id > 0 {
				ids = append(ids, uint(id))
			}
		}
		return ids, nil
	}

	// 缓存失效，回源数据库
	ids, err := r.FriendIDs(userID)
	if err != nil {
		return nil, err
	}
	pipe := r.Redis.Pipeline()
	if len(ids) > 0 {
		for _, id := range ids {
			pipe.SAdd(r.ctx, key, id)
		}
		pipe.Expire(r.ctx, key, 24*time.Hour)
	} else {
		// 防止缓存穿透：存 0 占位并设置短过期时间
		pipe.SAdd(r.ctx, key, 0)
		pipe.Expire(r.ctx, key, 5*time.Minute)
	}
	pipe.Exec(r.ctx)
	return ids, nil
}
