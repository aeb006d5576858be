package service

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"game_portal_backend/pkg/monitoring"
	"strconv"
	"time"
)

const (
	BoardGlobal   = "global"
	BoardGame     = "game"
	BoardPersonal = "personal"
)

type LeaderboardUser struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type LeaderboardGame struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type GlobalEntry struct {
	Rank        int             `json:"rank"`
	User        LeaderboardUser `json:"user"`
	TotalScore  int64           `json:"totalScore"`
	GamesPlayed int64           `json:"gamesPlayed"`
}

type ScoreEntry struct {
	Rank     int             `json:"rank"`
	User     LeaderboardUser `json:"user"`
	Score    int64           `json:"score"`
	PlayedAt time.Time       `json:"playedAt"`
	Game     LeaderboardGame `json:"game"`
}

type SubmitResult struct {
	Recorded bool   `json:"recorded"`
	Message  string `json:"-"`
}

type LeaderboardService struct {
	LeaderboardRepo *repository.LeaderboardRepository
	GameRepo        *repository.GameRepository
}

func NewLeaderboardService(leaderboardRepo *repository.LeaderboardRepository, gameRepo *repository.GameRepository) *LeaderboardService {
	return &LeaderboardService{
		LeaderboardRepo: leaderboardRepo,
		GameRepo:        gameRepo,
	}
}

// Global 总分排行，名次从 1 开始
func (s *LeaderboardService) Global() ([]GlobalEntry, error) {
	return s.global(util.GlobalLeaderboardLimit)
}

func (s *LeaderboardService) global(limit int) ([]GlobalEntry, error) {
	rows, err := s.LeaderboardRepo.Global(limit)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load leaderboard")
	}
	entries := make([]GlobalEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, GlobalEntry{
			Rank:        i + 1,
			User:        LeaderboardUser{ID: row.UserID, Name: row.Name, Avatar: row.Avatar},
			TotalScore:  row.TotalScore,
			GamesPlayed: row.GamesPlayed,
		})
	}
	return entries, nil
}

func scoreEntries(rows []model.LeaderboardEntry) []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(rows))
	for i, row := range rows {
		e := ScoreEntry{
			Rank:     i + 1,
			Score:    row.Score,
			PlayedAt: row.PlayedAt,
		}
		if row.User != nil {
			e.User = LeaderboardUser{ID: row.User.ID, Name: row.User.Name, Avatar: row.User.Avatar}
		} else {
			e.User = LeaderboardUser{ID: row.UserID}
		}
		if row.Game != nil {
			e.Game = LeaderboardGame{ID: row.Game.ID, Title: row.Game.Title, Slug: row.Game.Slug}
		} else {
			e.Game = LeaderboardGame{ID: row.GameID}
		}
		entries = append(entries, e)
	}
	return entries
}

func (s *LeaderboardService) ForGame(gameID uint) ([]ScoreEntry, error) {
	game, err := s.GameRepo.FindByID(gameID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrGameNotFound, "Failed to load leaderboard")
	}
	rows, err := s.LeaderboardRepo.ForGame(gameID, util.GameLeaderboardLimit)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load leaderboard")
	}
	for i := range rows {
		rows[i].Game = game
	}
	return scoreEntries(rows), nil
}

func (s *LeaderboardService) Personal(userID uint) ([]ScoreEntry, error) {
	rows, err := s.LeaderboardRepo.Personal(userID, util.PersonalLeaderboardLimit)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load leaderboard")
	}
	return scoreEntries(rows), nil
}

// Board 按类型返回排行榜，未知类型按全站处理
func (s *LeaderboardService) Board(boardType string, gameID, userID uint) (string, interface{}, error) {
	switch boardType {
	case BoardGame:
		entries, err := s.ForGame(gameID)
		return BoardGame, entries, err
	case BoardPersonal:
		entries, err := s.Personal(userID)
		return BoardPersonal, entries, err
	default:
		entries, err := s.Global()
		return BoardGlobal, entries, err
	}
}

// Games 排行榜筛选用的游戏列表
func (s *LeaderboardService) Games() ([]LeaderboardGame, error) {
	games, _, err := s.GameRepo.List(repository.GameFilter{ActiveOnly: true, Sort: repository.SortNew})
	if err != nil {
		return nil, util.Wrap(err, "Failed to load games")
	}
	out := make([]LeaderboardGame, 0, len(games))
	for _, g := range games {
		out = append(out, LeaderboardGame{ID: g.ID, Title: g.Title, Slug: g.Slug})
	}
	return out, nil
}

// SubmitScore 只有超过个人最高分才写入
func (s *LeaderboardService) SubmitScore(userID, gameID uint, score int64) (*SubmitResult, error) {
	if score < 0 {
		return nil, util.FieldValidation("score", "The score field must be at least 0.")
	}
	exists, err := s.GameRepo.Exists(gameID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to submit score")
	}
	if !exists {
		return nil, util.ErrGameNotFound
	}

	recorded, err := s.LeaderboardRepo.SubmitScore(&model.LeaderboardEntry{
		UserID:   userID,
		GameID:   gameID,
		Score:    score,
		PlayedAt: time.Now(),
	})
	if err != nil {
		return nil, util.Wrap(err, "Failed to submit score")
	}
	monitoring.ScoreSubmissions.WithLabelValues(strconv.FormatBool(recorded)).Inc()

	if recorded {
		return &SubmitResult{Recorded: true, Message: "New high score recorded!"}, nil
	}
	return &SubmitResult{Recorded: false, Message: "Score recorded. Keep trying to beat your high score!"}, nil
}
