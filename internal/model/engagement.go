package model

const (
	DefaultBookmarkCategory = "general"
	MaxBookmarkCategory     = 50
	MaxBookmarkNotes        = 500
)

// Bookmark 用户收藏夹，(user, game) 唯一
type Bookmark struct {
	RecordModel
	UserID   uint   `gorm:"uniqueIndex:idx_bookmarks_user_game,priority:1;not null" json:"userId"`
	GameID   uint   `gorm:"uniqueIndex:idx_bookmarks_user_game,priority:2;index;not null" json:"gameId"`
	Game     *Game  `gorm:"foreignKey:GameID;constraint:-" json:"game,omitempty"`
	Category string `gorm:"size:50;index;default:general" json:"category"`
	Notes    string `gorm:"size:500" json:"notes"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

// Favorite 喜欢的游戏，(user, game) 唯一
type Favorite struct {
	RecordModel
	UserID uint  `gorm:"uniqueIndex:idx_favorites_user_game,priority:1;not null" json:"userId"`
	GameID uint  `gorm:"uniqueIndex:idx_favorites_user_game,priority:2;index;not null" json:"gameId"`
	Game   *Game `gorm:"foreignKey:GameID;constraint:-" json:"game,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
