package service

import (
	"bytes"
	"context"
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/testutil"
	"game_portal_backend/internal/util"
	"testing"

	"gorm.io/gorm"
)

func newGameService(t *testing.T) (*GameService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	games := repository.NewGameRepository(db)
	activity := NewActivityService(
		repository.NewActivityRepository(db),
		games,
		repository.NewAchievementRepository(db),
		repository.NewUserRepository(db),
		nil, nil, 50,
	)
	cfg := &config.Config{Server: config.ServerConfig{PublicURL: "https://games.example.com/"}}
	svc := NewGameService(games, repository.NewBookmarkRepository(db), repository.NewFavoriteRepository(db), activity, nil, cfg)
	return svc, db
}

func ptr[T any](v T) *T { return &v }

func TestToggleFeaturedTwice(t *testing.T) {
	svc, db := newGameService(t)
	g := &model.Game{RecordModel: model.RecordModel{ID: 42}, Title: "Answer", Slug: "answer", Active: true}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("create game: %v", err)
	}

	for i, want := range []bool{true, false} {
		got, err := svc.ToggleFeatured(42)
		if err != nil {
			t.Fatalf("ToggleFeatured() #%d error = %v", i+1, err)
		}
		if got.Featured != want {
			t.Errorf("ToggleFeatured() #%d = %v, want %v", i+1, got.Featured, want)
		}
	}

	got, err := svc.ToggleActive(42)
	if err != nil || got.Active {
		t.Errorf("ToggleActive() = %v, %v, want inactive", got.Active, err)
	}
	_, err = svc.ToggleActive(9999)
	wantKind(t, err, util.KindNotFound)
}

func TestCreateGame(t *testing.T) {
	svc, _ := newGameService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, GameInput{Title: "  "}, nil)
	wantKind(t, err, util.KindValidation)
	_, err = svc.Create(ctx, 1, GameInput{Title: "X", Plays: ptr(int64(-1))}, nil)
	wantKind(t, err, util.KindValidation)

	first, err := svc.Create(ctx, 1, GameInput{Title: "Space Runner", Rating: ptr(9.5), Plays: ptr(int64(1500))}, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.Slug != "space-runner" || first.Rating != 5 || !first.Active || first.Featured {
		t.Errorf("Create() = slug %q rating %v active %v featured %v", first.Slug, first.Rating, first.Active, first.Featured)
	}
	if first.PlaysFormatted != "1.5K" || first.Image == "" {
		t.Errorf("Create() presentation = %q %q", first.PlaysFormatted, first.Image)
	}

	second, err := svc.Create(ctx, 1, GameInput{Title: "Space Runner", Active: ptr(false)}, nil)
	if err != nil {
		t.Fatalf("Create() duplicate title error = %v", err)
	}
	if second.Slug != "space-runner-2" || second.Active {
		t.Errorf("second = slug %q active %v, want space-runner-2 inactive", second.Slug, second.Active)
	}
	_, err = svc.Show("space-runner-2")
	wantKind(t, err, util.KindNotFound)
}

func TestUpdateKeepsPlays(t *testing.T) {
	svc, db := newGameService(t)
	g := testutil.CreateGame(t, db, "Space Runner", "arcade")
	db.Model(g).Update("plays", 77)

	updated, err := svc.Update(context.Background(), g.ID, GameInput{Title: "Space Runner Deluxe", Category: "action"}, nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Slug != "space-runner-deluxe" || updated.Category != "action" {
		t.Errorf("Update() = %q %q", updated.Slug, updated.Category)
	}
	stored, _ := svc.FindByID(g.ID)
	if stored.Plays != 77 {
		t.Errorf("plays = %d, want 77", stored.Plays)
	}

	_, err = svc.Update(context.Background(), 9999, GameInput{Title: "x"}, nil)
	wantKind(t, err, util.KindNotFound)
}

func TestPlayRecordsActivity(t *testing.T) {
	svc, db := newGameService(t)
	u := testutil.CreateUser(t, db, "alice")
	g := testutil.CreateGame(t, db, "Space Runner", "arcade")
	testutil.CreateGame(t, db, "Moon Runner", "arcade")
	testutil.CreateGame(t, db, "Chess", "board")

	res, err := svc.Play(g.Slug, u.ID)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if res.Game.Plays != 1 {
		t.Errorf("plays = %d, want 1", res.Game.Plays)
	}
	if len(res.Suggested) != 1 || res.Suggested[0].Title != "Moon Runner" {
		t.Errorf("suggested = %v", res.Suggested)
	}
	if len(res.Recent) != 2 || len(res.Trending) != 2 {
		t.Errorf("recent = %d trending = %d, want 2 each", len(res.Recent), len(res.Trending))
	}

	if _, err := svc.Play(g.Slug, 0); err != nil {
		t.Fatalf("Play() anonymous error = %v", err)
	}
	var n int64
	db.Model(&model.Activity{}).Where("type = ? AND subject_type = ?", "game", model.SubjectGame).Count(&n)
	if n != 1 {
		t.Errorf("game activities = %d, want 1", n)
	}

	_, err = svc.Play("missing", u.ID)
	wantKind(t, err, util.KindNotFound)
}

func TestHomeDecoratesForUser(t *testing.T) {
	svc, db := newGameService(t)
	u := testutil.CreateUser(t, db, "alice")
	g := testutil.CreateGame(t, db, "Space Runner", "Action")
	db.Model(g).Update("featured", true)
	repository.NewFavoriteRepository(db).Toggle(u.ID, g.ID)

	home, err := svc.Home(u.ID)
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}
	if home.Featured == nil || home.Featured.ID != g.ID || !home.Featured.IsFavorited || home.Featured.IsBookmarked {
		t.Errorf("Featured = %+v", home.Featured)
	}
	if len(home.Action) != 1 {
		t.Errorf("Action = %d, want 1", len(home.Action))
	}

	anon, _ := svc.Home(0)
	if anon.Featured.IsFavorited {
		t.Error("anonymous home shows favorite state")
	}
}

func TestHomeMarksBookmarksAcrossSections(t *testing.T) {
	svc, db := newGameService(t)
	u := testutil.CreateUser(t, db, "alice")
	marked := testutil.CreateGame(t, db, "Cave Diver", "Adventure")
	testutil.CreateGame(t, db, "Sky Racer", "Action")
	repository.NewBookmarkRepository(db).Create(&model.Bookmark{UserID: u.ID, GameID: marked.ID, Category: "later"})

	home, err := svc.Home(u.ID)
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}
	if len(home.Action) != 2 {
		t.Fatalf("Action = %d, want 2", len(home.Action))
	}
	for _, g := range home.Action {
		if want := g.ID == marked.ID; g.IsBookmarked != want || g.IsFavorited {
			t.Errorf("game %d bookmarked %v favorited %v, want %v false", g.ID, g.IsBookmarked, g.IsFavorited, want)
		}
		if g.PlaysFormatted == "" || g.ImageURL == "" {
			t.Errorf("game %d not presented: %+v", g.ID, g.Game)
		}
	}

	// 收藏表不可用时首页仍然返回，只是没有收藏标记
	if err := db.Migrator().DropTable(&model.Favorite{}); err != nil {
		t.Fatalf("drop favorites: %v", err)
	}
	home, err = svc.Home(u.ID)
	if err != nil {
		t.Fatalf("Home() without favorites error = %v", err)
	}
	if home.Featured == nil || home.Featured.IsFavorited {
		t.Errorf("Featured = %+v", home.Featured)
	}
}

func TestQRCode(t *testing.T) {
	svc, db := newGameService(t)
	g := testutil.CreateGame(t, db, "Space Runner", "arcade")

	if got := svc.ShareURL(g); got != "https://games.example.com/games/space-runner" {
		t.Errorf("ShareURL() = %q", got)
	}
	png, err := svc.QRCode(g.Slug)
	if err != nil {
		t.Fatalf("QRCode() error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("QRCode() is not a PNG")
	}
	_, err = svc.QRCode("missing")
	wantKind(t, err, util.KindNotFound)
}

func TestDeleteGame(t *testing.T) {
	svc, db := newGameService(t)
	g := testutil.CreateGame(t, db, "Space Runner", "arcade")

	if err := svc.Delete(context.Background(), g.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	wantKind(t, svc.Delete(context.Background(), g.ID), util.KindNotFound)
}
