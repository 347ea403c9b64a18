package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/camshop/backend/internal/config"
	"github.com/camshop/backend/internal/model"
	"github.com/camshop/backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type fakeFinder struct{}

func (fakeFinder) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, mongo.ErrNoDocuments
}

func newGateRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth, err := service.NewAuthService(fakeFinder{}, service.NewBlacklist(), config.AuthConfig{
		JWTSecret:  "test-secret",
		BcryptCost: "4",
	})
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	r := gin.New()
	secure := r.Group("/secure", AuthMiddleware(auth))
	secure.GET("", RequireRoles(model.RoleAdmin), func(c *gin.Context) {
		user := GetAuthUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	return r, auth
}

func doSecure(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGateMissingToken(t *testing.T) {
	r, _ := newGateRouter(t)
	if w := doSecure(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGateInvalidToken(t *testing.T) {
	r, _ := newGateRouter(t)
	if w := doSecure(r, "garbage.token.here"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGateExpiredToken(t *testing.T) {
	r, auth := newGateRouter(t)
	token, err := auth.IssueToken("a@x.com", []string{model.RoleAdmin}, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if w := doSecure(r, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGateRevokedToken(t *testing.T) {
	r, auth := newGateRouter(t)
	token, err := auth.IssueToken("a@x.com", []string{model.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if w := doSecure(r, token); w.Code != http.StatusOK {
		t.Fatalf("expected 200 before revocation, got %d", w.Code)
	}

	if err := auth.Logout(token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if w := doSecure(r, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after revocation, got %d", w.Code)
	}
}

func TestGateInsufficientRole(t *testing.T) {
	r, auth := newGateRouter(t)
	token, err := auth.IssueToken("a@x.com", []string{model.RoleCustomer}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if w := doSecure(r, token); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestGateTokenFromCookie(t *testing.T) {
	r, auth := newGateRouter(t)
	token, err := auth.IssueToken("a@x.com", []string{model.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieConfig().Name, Value: token})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 via cookie, got %d", w.Code)
	}
}
