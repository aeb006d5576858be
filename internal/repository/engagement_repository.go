package repository

import (
	"game_portal_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookmarkRepository struct {
	DB *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{DB: db}
}

func (r *BookmarkRepository) List(userID uint, category string) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	db := r.DB.Preload("Game").Where("user_id = ?", userID)
	if category != "" && category != "all" {
		db = db.Where("category = ?", category)
	}
	err := db.Order("created_at DESC").Order("id DESC").Find(&bookmarks).Error
	return bookmarks, err
}

func (r *BookmarkRepository) Categories(userID uint) ([]string, error) {
	var categories []string
	err := r.DB.Model(&model.Bookmark{}).
		Where("user_id = ?", userID).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// Create (user, game) 已存在时不插入并返回 false
func (r *BookmarkRepository) Create(b *model.Bookmark) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(b)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *BookmarkRepository) FindByID(id uint) (*model.Bookmark, error) {
	var b model.Bookmark
	err := r.DB.Preload("Game").First(&b, id).Error
	return &b, err
}

func (r *BookmarkRepository) Update(b *model.Bookmark) error {
	return r.DB.Model(b).Select("category", "notes").Updates(b).Error
}

func (r *BookmarkRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Bookmark{}, id).Error
}

// DeleteByGame 返回删除的行数
func (r *BookmarkRepository) DeleteByGame(userID, gameID uint) (int64, error) {
	res := r.DB.Where("user_id = ? AND game_id = ?", userID, gameID).Delete(&model.Bookmark{})
	return res.RowsAffected, res.Error
}

// GameIDsIn 用户在给定游戏里已加书签的游戏 ID
func (r *BookmarkRepository) GameIDsIn(userID uint, gameIDs []uint) (map[uint]bool, error) {
	return gameIDSet(r.DB.Model(&model.Bookmark{}), userID, gameIDs)
}

// gameIDSet 一次 IN 查询取出用户关联过的游戏
func gameIDSet(db *gorm.DB, userID uint, gameIDs []uint) (map[uint]bool, error) {
	set := map[uint]bool{}
	if len(gameIDs) == 0 {
		return set, nil
	}
	var ids []uint
	err := db.Where("user_id = ? AND game_id IN ?", userID, gameIDs).Pluck("game_id", &ids).Error
	for _, id := range ids {
		set[id] = true
	}
	return set, err
}

func (r *BookmarkRepository) CountByUser(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Bookmark{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

type FavoriteRepository struct {
	DB *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{DB: db}
}

func (r *FavoriteRepository) List(userID uint) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := r.DB.Preload("Game").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&favorites).Error
	return favorites, err
}

func (r *FavoriteRepository) Create(f *model.Favorite) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *FavoriteRepository) FindByID(id uint) (*model.Favorite, error) {
	var f model.Favorite
	err := r.DB.First(&f, id).Error
	return &f, err
}

func (r *FavoriteRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Favorite{}, id).Error
}

// GameIDsIn 用户在给定游戏里已收藏的游戏 ID
func (r *FavoriteRepository) GameIDsIn(userID uint, gameIDs []uint) (map[uint]bool, error) {
	return gameIDSet(r.DB.Model(&model.Favorite{}), userID, gameIDs)
}

func (r *FavoriteRepository) IsFavorited(userID, gameID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Favorite{}).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Count(&count).Error
	return count > 0, err
}

// Toggle 存在则删除，不存在则插入，返回操作后是否为收藏状态
// 删除与插入都是条件写，重复提交不会产生两行
func (r *FavoriteRepository) Toggle(userID, gameID uint) (bool, error) {
	favorited := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND game_id = ?", userID, gameID).Delete(&model.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Favorite{
			UserID: userID,
			GameID: gameID,
		})
		if res.Error != nil {
			return res.Error
		}
		favorited = true
		return nil
	})
	return favorited, err
}
