package service

import (
	"bytes"
	"fmt"
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"

	"github.com/xuri/excelize/v2"
)

const (
	dashboardListSize = 5
	exportSheet       = "Leaderboard"
)

type DashboardStats struct {
	repository.GameStats
	TotalUsers   int64        `json:"totalUsers"`
	RecentGames  []model.Game `json:"recentGames"`
	PopularGames []model.Game `json:"popularGames"`
}

// AdminService 后台统计与导出
type AdminService struct {
	GameRepo    *repository.GameRepository
	UserRepo    *repository.UserRepository
	Leaderboard *LeaderboardService
	Storage     *StorageService
}

func NewAdminService(gameRepo *repository.GameRepository, userRepo *repository.UserRepository, leaderboard *LeaderboardService, storage *StorageService) *AdminService {
	return &AdminService{
		GameRepo:    gameRepo,
		UserRepo:    userRepo,
		Leaderboard: leaderboard,
		Storage:     storage,
	}
}

func (s *AdminService) Dashboard() (*DashboardStats, error) {
	stats, err := s.GameRepo.Stats()
	if err != nil {
		return nil, util.Wrap(err, "Failed to load dashboard")
	}
	users, err := s.UserRepo.Count()
	if err != nil {
		return nil, util.Wrap(err, "Failed to load dashboard")
	}
	recent, _, err := s.GameRepo.List(repository.GameFilter{Sort: repository.SortNew, Limit: dashboardListSize})
	if err != nil {
		return nil, util.Wrap(err, "Failed to load dashboard")
	}
	popular, _, err := s.GameRepo.List(repository.GameFilter{Sort: repository.SortTrending, Limit: dashboardListSize})
	if err != nil {
		return nil, util.Wrap(err, "Failed to load dashboard")
	}

	urlFor := s.Storage.URLFunc()
	for i := range recent {
		recent[i].Present(urlFor)
	}
	for i := range popular {
		popular[i].Present(urlFor)
	}

	return &DashboardStats{
		GameStats:    stats,
		TotalUsers:   users,
		RecentGames:  recent,
		PopularGames: popular,
	}, nil
}

// Games 后台游戏列表，包含未上架的游戏
func (s *AdminService) Games(page, limit int) ([]model.Game, int64, error) {
	games, total, err := s.GameRepo.List(repository.GameFilter{
		Sort:   repository.SortNew,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, 0, util.Wrap(err, "Failed to load games")
	}
	urlFor := s.Storage.URLFunc()
	for i := range games {
		games[i].Present(urlFor)
	}
	return games, total, nil
}

// ExportLeaderboard 把全站排行导出为 xlsx
func (s *AdminService) ExportLeaderboard() ([]byte, error) {
	entries, err := s.Leaderboard.global(0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, util.Wrap(err, "Failed to build export")
	}
	header := []interface{}{"Rank", "User ID", "Name", "Total Score", "Games Played"}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, util.Wrap(err, "Failed to build export")
	}
	for i, e := range entries {
		row := []interface{}{e.Rank, e.User.ID, e.User.Name, e.TotalScore, e.GamesPlayed}
		if err := f.SetSheetRow(exportSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, util.Wrap(err, "Failed to build export")
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, util.Wrap(err, "Failed to build export")
	}
	return buf.Bytes(), nil
}
