package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/camshop/backend/internal/config"
	"github.com/camshop/backend/internal/model"
	"github.com/camshop/backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/crypto/bcrypt"
)

type singleUserFinder struct {
	user *model.User
}

func (f *singleUserFinder) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, mongo.ErrNoDocuments
}

func newAuthRouter(t *testing.T, finder service.UserFinder) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth, err := service.NewAuthService(finder, service.NewBlacklist(), config.AuthConfig{
		JWTSecret:  "test-secret",
		BcryptCost: "4",
	})
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	h := NewUserHandler(auth, nil)
	r := gin.New()
	r.POST("/api/v1/users/login", h.Login)
	r.POST("/api/v1/users/logout", h.Logout)
	return r, auth
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLoginValidation(t *testing.T) {
	r, _ := newAuthRouter(t, &singleUserFinder{})

	tests := []struct {
		name string
		body string
	}{
		{"empty-body", `{}`},
		{"missing-password", `{"email":"a@x.com"}`},
		{"missing-email", `{"password":"pw"}`},
		{"not-json", `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postJSON(r, "/api/v1/users/login", tt.body); w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	r, _ := newAuthRouter(t, &singleUserFinder{})

	w := postJSON(r, "/api/v1/users/login", `{"email":"nobody@x.com","password":"pw"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestLoginSetsCookieAndReturnsToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("P1-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	finder := &singleUserFinder{user: &model.User{
		Name:     "alice",
		Email:    "a@x.com",
		Password: string(hash),
		Roles:    []string{model.RoleCustomer},
		Active:   true,
	}}
	r, auth := newAuthRouter(t, finder)

	w := postJSON(r, "/api/v1/users/login", `{"email":"a@x.com","password":"P1-password"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Data    struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.AccessToken == "" {
		t.Fatalf("expected access token in response")
	}

	var found bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieConfig().Name && cookie.Value != "" {
			found = true
			if !cookie.HttpOnly {
				t.Fatalf("jwt cookie should be http-only")
			}
		}
	}
	if !found {
		t.Fatalf("expected jwt cookie on login response")
	}
}

func TestLoginInactiveUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("P1-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	finder := &singleUserFinder{user: &model.User{
		Email:    "a@x.com",
		Password: string(hash),
		Active:   false,
	}}
	r, _ := newAuthRouter(t, finder)

	w := postJSON(r, "/api/v1/users/login", `{"email":"a@x.com","password":"P1-password"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestLogoutWithoutToken(t *testing.T) {
	r, _ := newAuthRouter(t, &singleUserFinder{})

	w := postJSON(r, "/api/v1/users/logout", ``)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	r, auth := newAuthRouter(t, &singleUserFinder{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieConfig().Name, Value: "some-token"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var cleared bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieConfig().Name && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected jwt cookie to be cleared")
	}
}
