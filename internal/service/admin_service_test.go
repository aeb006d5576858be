package service

import (
	"bytes"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/testutil"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportLeaderboard(t *testing.T) {
	db := testutil.NewDB(t)
	games := repository.NewGameRepository(db)
	leaderboard := NewLeaderboardService(repository.NewLeaderboardRepository(db, nil), games)
	svc := NewAdminService(games, repository.NewUserRepository(db), leaderboard, nil)

	u1 := testutil.CreateUser(t, db, "u1")
	u2 := testutil.CreateUser(t, db, "u2")
	g := testutil.CreateGame(t, db, "Space Runner", "arcade")
	leaderboard.SubmitScore(u1.ID, g.ID, 150)
	leaderboard.SubmitScore(u2.ID, g.ID, 200)

	data, err := svc.ExportLeaderboard()
	if err != nil {
		t.Fatalf("ExportLeaderboard() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Rank" || rows[0][4] != "Games Played" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][2] != "u2" || rows[1][3] != "200" {
		t.Errorf("first row = %v, want rank 1 u2 200", rows[1])
	}
}

func TestDashboard(t *testing.T) {
	db := testutil.NewDB(t)
	games := repository.NewGameRepository(db)
	svc := NewAdminService(games, repository.NewUserRepository(db), nil, nil)

	testutil.CreateUser(t, db, "alice")
	testutil.CreateGame(t, db, "Alpha", "arcade")
	hidden := testutil.CreateGame(t, db, "Beta", "arcade")
	db.Model(hidden).Update("active", false)

	stats, err := svc.Dashboard()
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if stats.Total != 2 || stats.Active != 1 || stats.TotalUsers != 1 {
		t.Errorf("Dashboard() = %+v", stats)
	}
	if len(stats.RecentGames) != 2 || stats.RecentGames[0].Title != "Beta" {
		t.Errorf("RecentGames = %v, want Beta first", stats.RecentGames)
	}

	list, total, err := svc.Games(1, 10)
	if err != nil || total != 2 || len(list) != 2 {
		t.Errorf("Games() = %d/%d, %v, want inactive games included", len(list), total, err)
	}
}
