package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aria/internal/config"
	"github.com/ashwinyue/aria/internal/model"
	"github.com/ashwinyue/aria/internal/service"
	"github.com/ashwinyue/aria/internal/service/auth"
	"github.com/ashwinyue/aria/internal/testutil"
)

// mockUserStore 内存用户存储
type mockUserStore struct {
	users map[string]*model.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*model.User)}
}

func (s *mockUserStore) Create(user *model.User) error {
	s.users[user.Username] = user
	return nil
}

func (s *mockUserStore) GetByID(id string) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *mockUserStore) GetByUsername(username string) (*model.User, error) {
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func (s *mockUserStore) Delete(id string) error { return nil }

func newAuthTestRouter(t *testing.T) (*gin.Engine, *mockUserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMockUserStore()
	svc := &service.Services{
		Auth: auth.NewService(store, &config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 3600}),
	}
	h := NewAuthHandler(svc)

	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	return r, store
}

func TestAuthHandler_SignupAndLogin(t *testing.T) {
	r, store := newAuthTestRouter(t)

	w := testutil.PerformRequest(r, http.MethodPost, "/signup", testutil.JSONBody(t, map[string]string{
		"username": "alice",
		"password": "secret123",
	}), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", w.Code, w.Body.String())
	}
	if _, ok := store.users["alice"]; !ok {
		t.Fatal("user not stored after signup")
	}

	w = testutil.PerformRequest(r, http.MethodPost, "/login", testutil.JSONBody(t, map[string]string{
		"username": "alice",
		"password": "secret123",
	}), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			UserID string `json:"user_id"`
			Token  string `json:"token"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, w, &resp)
	if resp.Data.Token == "" {
		t.Error("login response missing token")
	}
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	r, store := newAuthTestRouter(t)
	if err := store.Create(testutil.UserFixture(t, "bob", "right-password")); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w := testutil.PerformRequest(r, http.MethodPost, "/login", testutil.JSONBody(t, map[string]string{
		"username": "bob",
		"password": "wrong-password",
	}), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", w.Code)
	}
}

func TestAuthHandler_SignupRejectsShortPassword(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := testutil.PerformRequest(r, http.MethodPost, "/signup", testutil.JSONBody(t, map[string]string{
		"username": "carol",
		"password": "x",
	}), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("signup status = %d, want 400", w.Code)
	}
}
