package controller

import (
	"bytes"
	"encoding/json"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/testutil"
	"game_portal_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser 模拟登录中间件，userID 为 0 时按游客处理
func asUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != 0 {
			c.Set("user", &util.Claims{UserID: userID})
		}
		c.Next()
	}
}

func do(r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, util.Response) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp util.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

type fixture struct {
	db          *gorm.DB
	games       *GameController
	leaderboard *LeaderboardController
	favorites   *FavoriteController
	activity    *ActivityController
	admin       *AdminController
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	gameRepo := repository.NewGameRepository(db)
	userRepo := repository.NewUserRepository(db)
	activity := service.NewActivityService(repository.NewActivityRepository(db), gameRepo, repository.NewAchievementRepository(db), userRepo, nil, nil, 50)
	leaderboard := service.NewLeaderboardService(repository.NewLeaderboardRepository(db, nil), gameRepo)

	return &fixture{
		db:          db,
		games:       NewGameController(service.NewGameService(gameRepo, repository.NewBookmarkRepository(db), repository.NewFavoriteRepository(db), activity, nil, nil)),
		leaderboard: NewLeaderboardController(leaderboard),
		favorites:   NewFavoriteController(service.NewFavoriteService(repository.NewFavoriteRepository(db), gameRepo, nil)),
		activity:    NewActivityController(activity),
		admin:       NewAdminController(service.NewAdminService(gameRepo, userRepo, leaderboard, nil), service.NewUserService(userRepo)),
	}
}

func (f *fixture) router(userID uint) *gin.Engine {
	r := gin.New()
	api := r.Group("/api", asUser(userID))
	api.GET("/leaderboard", f.leaderboard.Index)
	api.POST("/leaderboard", f.leaderboard.Submit)
	api.POST("/favorites/toggle", f.favorites.Toggle)
	api.POST("/activity", f.activity.Record)
	api.GET("/activity", f.activity.Index)
	api.GET("/games/:slug", f.games.Show)
	api.PATCH("/admin/games/:id/toggle-featured", f.games.ToggleFeatured)
	api.PATCH("/admin/users/:id/toggle-admin", f.admin.ToggleAdmin)
	return r
}

func TestLeaderboardIndex(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "alice")
	g := testutil.CreateGame(t, f.db, "Space Runner", "arcade")

	tests := []struct {
		name   string
		userID uint
		path   string
		status int
		kind   util.ErrorKind
	}{
		{"global for guests", 0, "/api/leaderboard", http.StatusOK, ""},
		{"personal needs login", 0, "/api/leaderboard?type=personal", http.StatusUnauthorized, ""},
		{"personal", u.ID, "/api/leaderboard?type=personal", http.StatusOK, ""},
		{"game without id", 0, "/api/leaderboard?type=game", http.StatusUnprocessableEntity, util.KindValidation},
		{"unknown game", 0, "/api/leaderboard?type=game&game_id=9999", http.StatusNotFound, util.KindNotFound},
		{"game", 0, "/api/leaderboard?type=game&game_id=" + itoa(g.ID), http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(f.router(tt.userID), http.MethodGet, tt.path, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if resp.Error != tt.kind {
				t.Errorf("error kind = %q, want %q", resp.Error, tt.kind)
			}
		})
	}
}

func TestLeaderboardSubmit(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "alice")
	g := testutil.CreateGame(t, f.db, "Space Runner", "arcade")
	r := f.router(u.ID)

	w, _ := do(r, http.MethodPost, "/api/leaderboard", map[string]interface{}{"game_id": g.ID})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing score status = %d, want 400", w.Code)
	}

	w, resp := do(r, http.MethodPost, "/api/leaderboard", map[string]interface{}{"game_id": g.ID, "score": 0})
	if w.Code != http.StatusOK || resp.Message != "New high score recorded!" {
		t.Errorf("zero score = %d %q", w.Code, resp.Message)
	}
	w, resp = do(r, http.MethodPost, "/api/leaderboard", map[string]interface{}{"game_id": g.ID, "score": 0})
	if w.Code != http.StatusOK || resp.Message != "Score recorded. Keep trying to beat your high score!" {
		t.Errorf("repeat score = %d %q", w.Code, resp.Message)
	}
	w, _ = do(r, http.MethodPost, "/api/leaderboard", map[string]interface{}{"game_id": g.ID, "score": -5})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative score status = %d, want 422", w.Code)
	}
}

func TestFavoriteToggleMessages(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "alice")
	g := testutil.CreateGame(t, f.db, "Space Runner", "arcade")
	r := f.router(u.ID)

	for _, want := range []string{"Added to favorites", "Removed from favorites"} {
		w, resp := do(r, http.MethodPost, "/api/favorites/toggle", map[string]interface{}{"game_id": g.ID})
		if w.Code != http.StatusOK || resp.Message != want {
			t.Errorf("toggle = %d %q, want %q", w.Code, resp.Message, want)
		}
	}
}

func TestRecordActivity(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "alice")
	r := f.router(u.ID)

	w, resp := do(r, http.MethodPost, "/api/activity", map[string]interface{}{
		"type": "custom", "action": "did a thing", "subject_type": "post", "subject_id": 1,
	})
	if w.Code != http.StatusUnprocessableEntity || resp.Fields["subject_type"] == "" {
		t.Errorf("bad subject = %d %v", w.Code, resp.Fields)
	}

	w, _ = do(r, http.MethodPost, "/api/activity", map[string]interface{}{"type": "custom", "action": "did a thing"})
	if w.Code != http.StatusCreated {
		t.Fatalf("record status = %d, want 201", w.Code)
	}

	w, resp = do(r, http.MethodGet, "/api/activity", nil)
	page, _ := resp.Data.(map[string]interface{})
	if w.Code != http.StatusOK || page["total"] != float64(1) || page["limit"] != float64(20) {
		t.Errorf("index = %d %v", w.Code, page)
	}
}

func TestToggleFeaturedMessage(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "root")
	g := testutil.CreateGame(t, f.db, "Space Runner", "arcade")
	r := f.router(admin.ID)

	w, resp := do(r, http.MethodPatch, "/api/admin/games/"+itoa(g.ID)+"/toggle-featured", nil)
	if w.Code != http.StatusOK || resp.Message != "Game featured status updated successfully!" {
		t.Errorf("toggle = %d %q", w.Code, resp.Message)
	}
	w, _ = do(r, http.MethodPatch, "/api/admin/games/abc/toggle-featured", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("invalid id status = %d, want 404", w.Code)
	}
}

func TestToggleAdminSelf(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "root")
	r := f.router(admin.ID)

	w, resp := do(r, http.MethodPatch, "/api/admin/users/"+itoa(admin.ID)+"/toggle-admin", nil)
	if w.Code != http.StatusForbidden || resp.Message != "You cannot modify your own admin status!" {
		t.Errorf("self toggle = %d %q", w.Code, resp.Message)
	}
}

func TestShowGame(t *testing.T) {
	f := newFixture(t)
	testutil.CreateGame(t, f.db, "Space Runner", "arcade")
	r := f.router(0)

	w, resp := do(r, http.MethodGet, "/api/games/space-runner", nil)
	data, _ := resp.Data.(map[string]interface{})
	if w.Code != http.StatusOK || data["shareUrl"] != "http://localhost:8080/games/space-runner" {
		t.Errorf("show = %d %v", w.Code, data["shareUrl"])
	}
	w, _ = do(r, http.MethodGet, "/api/games/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", w.Code)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
