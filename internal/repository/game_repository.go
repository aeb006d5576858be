package repository

import (
	"game_portal_backend/internal/model"

	"gorm.io/gorm"
)

const (
	SortTrending = "trending"
	SortNew      = "new"
	SortFeatured = "featured"
)

// GameFilter 目录查询条件
type GameFilter struct {
	Category   string
	Featured   bool
	Sort       string
	ActiveOnly bool
	Search     string
	Limit      int
	Offset     int
}

type GameRepository struct {
	DB *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{DB: db}
}

func (r *GameRepository) Create(game *model.Game) error {
	return r.DB.Create(game).Error
}

// Update 默认不覆盖 plays，避免冲掉并发的播放计数
func (r *GameRepository) Update(game *model.Game, withPlays bool) error {
	if withPlays {
		return r.DB.Save(game).Error
	}
	return r.DB.Omit("plays").Save(game).Error
}

func (r *GameRepository) FindByID(id uint) (*model.Game, error) {
	var game model.Game
	err := r.DB.First(&game, id).Error
	return &game, err
}

func (r *GameRepository) FindBySlug(slug string, activeOnly bool) (*model.Game, error) {
	var game model.Game
	db := r.DB.Where("slug = ?", slug)
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	err := db.First(&game).Error
	return &game, err
}

func (r *GameRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Game{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// SlugTaken 判断 slug 是否已被其他游戏使用
func (r *GameRepository) SlugTaken(slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Game{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *GameRepository) List(f GameFilter) ([]model.Game, int64, error) {
	var games []model.Game
	var total int64

	db := r.DB.Model(&model.Game{})
	if f.ActiveOnly {
		db = db.Where("active = ?", true)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Featured {
		db = db.Where("featured = ?", true)
	}
	if f.Search != "" {
		db = db.Where("title LIKE ?", "%"+f.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case SortTrending:
		db = db.Order("plays DESC")
	case SortNew:
		db = db.Order("created_at DESC")
	case SortFeatured:
		db = db.Where("featured = ?", true).Order("created_at DESC")
	default:
		db = db.Order("featured DESC").Order("created_at DESC")
	}
	db = db.Order("id DESC")

	if f.Limit > 0 {
		db = db.Limit(f.Limit).Offset(f.Offset)
	}
	err := db.Find(&games).Error
	return games, total, err
}

func (r *GameRepository) Categories() ([]string, error) {
	var categories []string
	err := r.DB.Model(&model.Game{}).
		Where("active = ? AND category <> ''", true).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// IncrementPlays 原子自增播放次数
func (r *GameRepository) IncrementPlays(id uint) error {
	return r.DB.Model(&model.Game{}).
		Where("id = ?", id).
		UpdateColumn("plays", gorm.Expr("plays + ?", 1)).Error
}

// Recent 最近更新的游戏
func (r *GameRepository) Recent(excludeID uint, limit int) ([]model.Game, error) {
	var games []model.Game
	err := r.DB.Where("active = ? AND id <> ?", true, excludeID).
		Order("updated_at DESC").Order("id DESC").
		Limit(limit).Find(&games).Error
	return games, err
}

func (r *GameRepository) SameCategory(category string, excludeID uint, limit int) ([]model.Game, error) {
	var games []model.Game
	err := r.DB.Where("active = ? AND category = ? AND id <> ?", true, category, excludeID).
		Order("rating DESC").Order("id DESC").
		Limit(limit).Find(&games).Error
	return games, err
}

func (r *GameRepository) InCategories(categories []string, limit int) ([]model.Game, error) {
	var games []model.Game
	err := r.DB.Where("active = ? AND category IN ?", true, categories).
		Order("featured DESC").Order("created_at DESC").
		Limit(limit).Find(&games).Error
	return games, err
}

func (r *GameRepository) Trending(excludeID uint, limit int) ([]model.Game, error) {
	var games []model.Game
	err := r.DB.Where("active = ? AND id <> ?", true, excludeID).
		Order("plays DESC").Order("id DESC").
		Limit(limit).Find(&games).Error
	return games, err
}

func (r *GameRepository) FindByIDs(ids []uint) ([]model.Game, error) {
	var games []model.Game
	if len(ids) == 0 {
		return games, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&games).Error
	return games, err
}

// ToggleFlag 在数据库里翻转布尔列，避免读改写
func (r *GameRepository) ToggleFlag(id uint, column string) error {
	res := r.DB.Model(&model.Game{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr("NOT "+column))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除游戏及其收藏、书签、排行榜数据
func (r *GameRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Game{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		for _, m := range []interface{}{&model.Favorite{}, &model.Bookmark{}, &model.LeaderboardEntry{}, &model.PersonalBest{}} {
			if err := tx.Where("game_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GameStats 后台仪表盘计数
type GameStats struct {
	Total    int64 `json:"totalGames"`
	Active   int64 `json:"activeGames"`
	Featured int64 `json:"featuredGames"`
}

func (r *GameRepository) Stats() (GameStats, error) {
	var s GameStats
	if err := r.DB.Model(&model.Game{}).Count(&s.Total).Error; err != nil {
		return s, err
	}
	if err := r.DB.Model(&model.Game{}).Where("active = ?", true).Count(&s.Active).Error; err != nil {
		return s, err
	}
	err := r.DB.Model(&model.Game{}).Where("featured = ?", true).Count(&s.Featured).Error
	return s, err
}
