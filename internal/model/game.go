package model

import (
	"fmt"
	"math"
	"strconv"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// swagger:model Game
type Game struct {
	RecordModel
	UserID      uint    `gorm:"index" json:"userId"`
	User        *User   `gorm:"foreignKey:UserID;constraint:-" json:"user,omitempty"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Slug        string  `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Description string  `gorm:"type:text" json:"description"`
	Category    string  `gorm:"size:100;index" json:"category"`
	ImagePath   string  `gorm:"size:255" json:"imagePath,omitempty"`
	GameURL     string  `gorm:"size:500" json:"gameUrl"`
	Rating      float64 `gorm:"type:decimal(3,2);default:0" json:"rating"`
	Plays       int64   `gorm:"default:0;index" json:"plays,string"`
	Featured    bool    `gorm:"default:false;index" json:"featured"`
	Active      bool    `gorm:"not null;index" json:"active"`

	// 展示字段，由 Present 填充
	ImageURL       string `gorm:"-" json:"imageUrl"`
	Image          string `gorm:"-" json:"image"`
	PlaysFormatted string `gorm:"-" json:"playsFormatted"`
	Players        string `gorm:"-" json:"players"`
}

func (Game) TableName() string {
	return "games"
}

// ClampRating 评分限定在 [0,5]
func ClampRating(r float64) float64 {
	if math.IsNaN(r) {
		return MinRating
	}
	return math.Max(MinRating, math.Min(MaxRating, r))
}

// FormatPlays 1200 -> "1.2K", 3400000 -> "3.4M"
func FormatPlays(plays int64) string {
	switch {
	case plays >= 1000000:
		return trimFloat(float64(plays)/1000000) + "M"
	case plays >= 1000:
		return trimFloat(float64(plays)/1000) + "K"
	default:
		return strconv.FormatInt(plays, 10)
	}
}

func trimFloat(v float64) string {
	rounded := math.Round(v*10) / 10
	if rounded == math.Trunc(rounded) {
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	return strconv.FormatFloat(rounded, 'f', 1, 64)
}

// PlaceholderImage 没有封面时使用的占位图
func PlaceholderImage(slug string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/400/300.jpg", slug)
}

// Present 计算展示字段，urlFor 把存储路径转换为可访问地址
func (g *Game) Present(urlFor func(path string) string) {
	if g.ImagePath != "" && urlFor != nil {
		g.ImageURL = urlFor(g.ImagePath)
	} else {
		g.ImageURL = PlaceholderImage(g.Slug)
	}
	g.Image = g.ImageURL
	g.PlaysFormatted = FormatPlays(g.Plays)
	g.Players = g.PlaysFormatted
}

// GameSummary 排行榜、收藏等列表里的游戏摘要
type GameSummary struct {
	ID       uint    `json:"id"`
	Title    string  `json:"title"`
	Slug     string  `json:"slug"`
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Plays    string  `json:"plays,omitempty"`
}

func (g *Game) Summary() GameSummary {
	return GameSummary{
		ID:       g.ID,
		Title:    g.Title,
		Slug:     g.Slug,
		Image:    g.ImageURL,
		Category: g.Category,
		Rating:   g.Rating,
		Plays:    g.PlaysFormatted,
	}
}
