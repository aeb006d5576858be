package middleware

import (
	"errors"
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret-test-secret-test-secret"

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
}

func token(t *testing.T, user *model.User) string {
	t.Helper()
	s, err := util.GenerateJWT(user, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return s
}

func user(id uint, admin bool) *model.User {
	return &model.User{BaseModel: model.BaseModel{ID: id}, IsAdmin: admin}
}

func whoami(c *gin.Context) {
	if claims := util.GetUserFromContext(c); claims != nil {
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": 0})
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(testConfig()), whoami)

	valid := token(t, user(7, false))
	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
		{"header", "Bearer " + valid, "", http.StatusOK},
		{"query", "", valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/me"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", OptionalAuth(testConfig()), whoami)

	for _, header := range []string{"", "Bearer broken"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK || w.Body.String() != `{"id":0}` {
			t.Errorf("header %q: got %d %s", header, w.Code, w.Body.String())
		}
	}
}

type fakeUsers map[uint]*model.User

func (f fakeUsers) FindByID(id uint) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := fakeUsers{
		1: user(1, true),
		// token 里仍声明为管理员，但数据库已撤销
		2: user(2, false),
	}
	r := gin.New()
	r.GET("/admin", AuthMiddleware(testConfig()), AdminMiddleware(users), whoami)

	tests := []struct {
		user *model.User
		want int
	}{
		{user(1, true), http.StatusOK},
		{user(2, true), http.StatusForbidden},
		{user(3, false), http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, tt.user))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("user %d: got %d, want %d", tt.user.ID, w.Code, tt.want)
		}
	}
}

type countingToucher struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (c *countingToucher) TouchLastSeen(uint) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	c.done <- struct{}{}
	return nil
}

func TestPresenceMiddlewareThrottles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	toucher := &countingToucher{done: make(chan struct{}, 4)}
	r := gin.New()
	r.GET("/me", AuthMiddleware(testConfig()), PresenceMiddleware(toucher, time.Hour), whoami)

	tok := token(t, user(5, false))
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	select {
	case <-toucher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("last seen never updated")
	}
	time.Sleep(50 * time.Millisecond)

	toucher.mu.Lock()
	defer toucher.mu.Unlock()
	if toucher.calls != 1 {
		t.Errorf("got %d touches, want 1", toucher.calls)
	}
}
