package service

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"time"
)

type FavoriteView struct {
	ID          uint              `json:"id"`
	Game        model.GameSummary `json:"game"`
	FavoritedAt time.Time         `json:"favoritedAt"`
}

type FavoriteService struct {
	FavoriteRepo *repository.FavoriteRepository
	GameRepo     *repository.GameRepository
	Storage      *StorageService
}

func NewFavoriteService(favoriteRepo *repository.FavoriteRepository, gameRepo *repository.GameRepository, storage *StorageService) *FavoriteService {
	return &FavoriteService{
		FavoriteRepo: favoriteRepo,
		GameRepo:     gameRepo,
		Storage:      storage,
	}
}

func (s *FavoriteService) List(userID uint) ([]FavoriteView, error) {
	favorites, err := s.FavoriteRepo.List(userID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load favorites")
	}
	urlFor := s.Storage.URLFunc()
	views := make([]FavoriteView, 0, len(favorites))
	for _, f := range favorites {
		v := FavoriteView{ID: f.ID, FavoritedAt: f.CreatedAt}
		if f.Game != nil {
			f.Game.Present(urlFor)
			v.Game = f.Game.Summary()
		} else {
			v.Game = model.GameSummary{ID: f.GameID}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *FavoriteService) ensureGame(gameID uint) error {
	exists, err := s.GameRepo.Exists(gameID)
	if err != nil {
		return util.Wrap(err, "Failed to load game")
	}
	if !exists {
		return util.ErrGameNotFound
	}
	return nil
}

func (s *FavoriteService) Add(userID, gameID uint) (*model.Favorite, error) {
	if err := s.ensureGame(gameID); err != nil {
		return nil, err
	}
	f := &model.Favorite{UserID: userID, GameID: gameID}
	inserted, err := s.FavoriteRepo.Create(f)
	if err != nil {
		return nil, util.Wrap(err, "Failed to add to favorites.")
	}
	if !inserted {
		return nil, util.ErrFavoriteExists
	}
	return f, nil
}

func (s *FavoriteService) Delete(id, actingUserID uint) error {
	f, err := s.FavoriteRepo.FindByID(id)
	if err != nil {
		return notFoundOr(err, util.ErrFavoriteNotFound, "Failed to load favorite")
	}
	if f.UserID != actingUserID {
		return util.ErrPermissionDenied
	}
	if err := s.FavoriteRepo.Delete(id); err != nil {
		return util.Wrap(err, "Failed to remove favorite")
	}
	return nil
}

// Toggle 返回操作后的收藏状态
func (s *FavoriteService) Toggle(userID, gameID uint) (bool, error) {
	if err := s.ensureGame(gameID); err != nil {
		return false, err
	}
	favorited, err := s.FavoriteRepo.Toggle(userID, gameID)
	if err != nil {
		return false, util.Wrap(err, "Failed to toggle favorite.")
	}
	return favorited, nil
}
