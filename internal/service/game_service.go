package service

import (
	"context"
	"fmt"
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"game_portal_backend/pkg/logger"
	"mime/multipart"
	"strings"

	"github.com/gosimple/slug"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	relatedGamesLimit = 6
	qrCodeSize        = 256
)

// GameInput 创建与更新游戏的字段
type GameInput struct {
	Title       string
	Description string
	Category    string
	GameURL     string
	Rating      *float64
	Plays       *int64
	Featured    *bool
	Active      *bool
}

type CatalogQuery struct {
	Category string
	Sort     string
	Page     int
}

// PublicQuery 公开 JSON 列表的参数
type PublicQuery struct {
	Category string
	Featured bool
	Trending bool
	Limit    int
}

type PlayResult struct {
	Game      *model.Game  `json:"game"`
	Recent    []model.Game `json:"recentGames"`
	Suggested []model.Game `json:"suggestedGames"`
	Trending  []model.Game `json:"trendingGames"`
}

// HomeGame 首页游戏，登录用户附带书签与收藏状态
type HomeGame struct {
	model.Game
	IsBookmarked bool `json:"isBookmarked"`
	IsFavorited  bool `json:"isFavorited"`
}

type HomePage struct {
	Featured *HomeGame `json:"featuredGame"`
	Trending []HomeGame `json:"trendingGames"`
	New      []HomeGame `json:"newGames"`
	Action   []HomeGame `json:"actionGames"`
}

type GameService struct {
	GameRepo     *repository.GameRepository
	BookmarkRepo *repository.BookmarkRepository
	FavoriteRepo *repository.FavoriteRepository
	Activity     *ActivityService
	Storage      *StorageService
	Cfg          *config.Config
}

func NewGameService(
	gameRepo *repository.GameRepository,
	bookmarkRepo *repository.BookmarkRepository,
	favoriteRepo *repository.FavoriteRepository,
	activity *ActivityService,
	storage *StorageService,
	cfg *config.Config,
) *GameService {
	return &GameService{
		GameRepo:     gameRepo,
		BookmarkRepo: bookmarkRepo,
		FavoriteRepo: favoriteRepo,
		Activity:     activity,
		Storage:      storage,
		Cfg:          cfg,
	}
}

func (s *GameService) present(games []model.Game) []model.Game {
	urlFor := s.Storage.URLFunc()
	for i := range games {
		games[i].Present(urlFor)
	}
	return games
}

func (s *GameService) presentOne(g *model.Game) *model.Game {
	g.Present(s.Storage.URLFunc())
	return g
}

// Catalog 目录分页，每页 12 个
func (s *GameService) Catalog(q CatalogQuery) (*util.PageResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	games, total, err := s.GameRepo.List(repository.GameFilter{
		Category:   q.Category,
		Sort:       q.Sort,
		ActiveOnly: true,
		Limit:      util.CatalogPageSize,
		Offset:     (q.Page - 1) * util.CatalogPageSize,
	})
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}
	return &util.PageResponse{
		List:  s.present(games),
		Total: total,
		Page:  q.Page,
		Limit: util.CatalogPageSize,
	}, nil
}

func (s *GameService) PublicList(q PublicQuery) ([]model.Game, error) {
	if q.Limit <= 0 {
		q.Limit = util.CatalogPageSize
	}
	sort := ""
	if q.Trending {
		sort = repository.SortTrending
	}
	games, _, err := s.GameRepo.List(repository.GameFilter{
		Category:   q.Category,
		Featured:   q.Featured,
		Sort:       sort,
		ActiveOnly: true,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}
	return s.present(games), nil
}

func (s *GameService) Categories() ([]string, error) {
	categories, err := s.GameRepo.Categories()
	if err != nil {
		return nil, util.Wrap(err, "Failed to load categories")
	}
	return categories, nil
}

func (s *GameService) Show(gameSlug string) (*model.Game, error) {
	game, err := s.GameRepo.FindBySlug(gameSlug, true)
	if err != nil {
		return nil, notFoundOr(err, util.ErrGameNotFound, "Failed to load game")
	}
	return s.presentOne(game), nil
}

func (s *GameService) FindByID(id uint) (*model.Game, error) {
	game, err := s.GameRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, util.ErrGameNotFound, "Failed to load game")
	}
	return s.presentOne(game), nil
}

// Play 增加播放次数并返回相关推荐，登录用户记录一条游戏动态
func (s *GameService) Play(gameSlug string, userID uint) (*PlayResult, error) {
	game, err := s.GameRepo.FindBySlug(gameSlug, true)
	if err != nil {
		return nil, notFoundOr(err, util.ErrGameNotFound, "Failed to load game")
	}

	if err := s.GameRepo.IncrementPlays(game.ID); err != nil {
		return nil, util.Wrap(err, "Failed to start game")
	}
	game.Plays++

	recent, err := s.GameRepo.Recent(game.ID, relatedGamesLimit)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}
	suggested, err := s.GameRepo.SameCategory(game.Category, game.ID, relatedGamesLimit)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}
	trending, err := s.GameRepo.Trending(game.ID, relatedGamesLimit)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}

	if userID != 0 && s.Activity != nil {
		_, err := s.Activity.Record(userID, RecordInput{
			Type:    "game",
			Action:  game.Title,
			Subject: model.GameSubject(game.ID),
		})
		if err != nil {
			logger.Log.Warn("Record play activity failed", zap.Error(err), zap.Uint("gameId", game.ID))
		}
	}

	return &PlayResult{
		Game:      s.presentOne(game),
		Recent:    s.present(recent),
		Suggested: s.present(suggested),
		Trending:  s.present(trending),
	}, nil
}

// Home 首页推荐位
func (s *GameService) Home(userID uint) (*HomePage, error) {
	featured, _, err := s.GameRepo.List(repository.GameFilter{Featured: true, ActiveOnly: true, Sort: repository.SortNew, Limit: 1})
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}
	if len(featured) == 0 {
		featured, _, err = s.GameRepo.List(repository.GameFilter{ActiveOnly: true, Sort: repository.SortNew, Limit: 1})
		if err != nil {
			return nil, util.Wrap(err, "Failed to load games")
		}
	}
	trending, err := s.GameRepo.Trending(0, relatedGamesLimit)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}
	newest, _, err := s.GameRepo.List(repository.GameFilter{ActiveOnly: true, Sort: repository.SortNew, Limit: relatedGamesLimit})
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}
	action, err := s.GameRepo.InCategories([]string{"Action", "Adventure"}, relatedGamesLimit)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}

	for _, list := range [][]model.Game{featured, trending, newest, action} {
		s.present(list)
	}
	favorited, bookmarked := s.engagementSets(userID, featured, trending, newest, action)
	page := &HomePage{
		Trending: decorate(trending, favorited, bookmarked),
		New:      decorate(newest, favorited, bookmarked),
		Action:   decorate(action, favorited, bookmarked),
	}
	if len(featured) > 0 {
		page.Featured = &decorate(featured, favorited, bookmarked)[0]
	}
	return page, nil
}

// engagementSets 每类只查一次，失败时首页照常返回，只是不带标记
func (s *GameService) engagementSets(userID uint, lists ...[]model.Game) (favorited, bookmarked map[uint]bool) {
	if userID == 0 {
		return nil, nil
	}
	var ids []uint
	for _, list := range lists {
		for i := range list {
			ids = append(ids, list[i].ID)
		}
	}

	var err error
	if s.FavoriteRepo != nil {
		if favorited, err = s.FavoriteRepo.GameIDsIn(userID, ids); err != nil {
			logger.Log.Warn("Load favorites for home failed", zap.Error(err), zap.Uint("userId", userID))
		}
	}
	if s.BookmarkRepo != nil {
		if bookmarked, err = s.BookmarkRepo.GameIDsIn(userID, ids); err != nil {
			logger.Log.Warn("Load bookmarks for home failed", zap.Error(err), zap.Uint("userId", userID))
		}
	}
	return favorited, bookmarked
}

func decorate(games []model.Game, favorited, bookmarked map[uint]bool) []HomeGame {
	out := make([]HomeGame, 0, len(games))
	for _, g := range games {
		out = append(out, HomeGame{
			Game:         g,
			IsFavorited:  favorited[g.ID],
			IsBookmarked: bookmarked[g.ID],
		})
	}
	return out
}

// uniqueSlug 由标题生成 slug，冲突时追加序号
func (s *GameService) uniqueSlug(title string, excludeID uint) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "game"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.GameRepo.SlugTaken(candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *GameService) apply(game *model.Game, in GameInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return util.FieldValidation("title", "The title field is required.")
	}
	if in.Plays != nil && *in.Plays < 0 {
		return util.FieldValidation("plays", "The plays field must be at least 0.")
	}

	gameSlug, err := s.uniqueSlug(in.Title, game.ID)
	if err != nil {
		return util.Wrap(err, "Failed to save game")
	}

	game.Title = in.Title
	game.Slug = gameSlug
	game.Description = strings.TrimSpace(in.Description)
	game.Category = strings.TrimSpace(in.Category)
	game.GameURL = strings.TrimSpace(in.GameURL)
	game.Rating = 0
	if in.Rating != nil {
		game.Rating = model.ClampRating(*in.Rating)
	}
	if in.Plays != nil {
		game.Plays = *in.Plays
	}
	game.Featured = in.Featured != nil && *in.Featured
	game.Active = in.Active == nil || *in.Active
	return nil
}

func (s *GameService) Create(ctx context.Context, userID uint, in GameInput, cover *multipart.FileHeader) (*model.Game, error) {
	game := &model.Game{UserID: userID}
	if err := s.apply(game, in); err != nil {
		return nil, err
	}

	if cover != nil {
		key, err := s.Storage.SaveCover(ctx, cover)
		if err != nil {
			return nil, err
		}
		game.ImagePath = key
	}

	if err := s.GameRepo.Create(game); err != nil {
		return nil, util.Wrap(err, "Failed to create game")
	}
	return s.presentOne(game), nil
}

func (s *GameService) Update(ctx context.Context, id uint, in GameInput, cover *multipart.FileHeader) (*model.Game, error) {
	game, err := s.GameRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, util.ErrGameNotFound, "Failed to load game")
	}
	if err := s.apply(game, in); err != nil {
		return nil, err
	}

	oldImage := game.ImagePath
	if cover != nil {
		key, err := s.Storage.SaveCover(ctx, cover)
		if err != nil {
			return nil, err
		}
		game.ImagePath = key
	}

	if err := s.GameRepo.Update(game, in.Plays != nil); err != nil {
		return nil, util.Wrap(err, "Failed to update game")
	}

	if cover != nil && oldImage != "" {
		if err := s.Storage.Delete(ctx, oldImage); err != nil {
			logger.Log.Warn("Delete old cover failed", zap.Error(err), zap.String("path", oldImage))
		}
	}
	return s.presentOne(game), nil
}

func (s *GameService) Delete(ctx context.Context, id uint) error {
	game, err := s.GameRepo.FindByID(id)
	if err != nil {
		return notFoundOr(err, util.ErrGameNotFound, "Failed to load game")
	}
	if err := s.GameRepo.Delete(id); err != nil {
		return notFoundOr(err, util.ErrGameNotFound, "Failed to delete game")
	}
	if game.ImagePath != "" && s.Storage != nil {
		if err := s.Storage.Delete(ctx, game.ImagePath); err != nil {
			logger.Log.Warn("Delete cover failed", zap.Error(err), zap.String("path", game.ImagePath))
		}
	}
	return nil
}

func (s *GameService) ToggleActive(id uint) (*model.Game, error) {
	return s.toggle(id, "active")
}

func (s *GameService) ToggleFeatured(id uint) (*model.Game, error) {
	return s.toggle(id, "featured")
}

func (s *GameService) toggle(id uint, column string) (*model.Game, error) {
	if err := s.GameRepo.ToggleFlag(id, column); err != nil {
		return nil, notFoundOr(err, util.ErrGameNotFound, "Failed to update game")
	}
	return s.FindByID(id)
}

// ShareURL 游戏详情页的对外地址
func (s *GameService) ShareURL(game *model.Game) string {
	base := "http://localhost:8080"
	if s.Cfg != nil && s.Cfg.Server.PublicURL != "" {
		base = s.Cfg.Server.PublicURL
	}
	return strings.TrimRight(base, "/") + "/games/" + game.Slug
}

// QRCode 生成游戏分享二维码 PNG
func (s *GameService) QRCode(gameSlug string) ([]byte, error) {
	game, err := s.GameRepo.FindBySlug(gameSlug, true)
	if err != nil {
		return nil, notFoundOr(err, util.ErrGameNotFound, "Failed to load game")
	}
	png, err := qrcode.Encode(s.ShareURL(game), qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, util.Wrap(err, "Failed to generate QR code")
	}
	return png, nil
}
