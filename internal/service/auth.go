package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/camshop/backend/internal/config"
	"github.com/camshop/backend/internal/db"
	"github.com/camshop/backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenCookie = "jwt"
	accessTokenTTL    = 7 * 24 * time.Hour
)

type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	repo       UserFinder
	blacklist  *Blacklist
	jwtSecret  []byte
	bcryptCost int
	cookieCfg  CookieConfig
}

type authClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func NewAuthService(repo UserFinder, blacklist *Blacklist, cfg config.AuthConfig) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	cost, err := parseBcryptCost(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid BCRYPT_COST", ErrMisconfigured)
	}

	cookiePath := cfg.CookiePath
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	return &AuthService{
		repo:       repo,
		blacklist:  blacklist,
		jwtSecret:  []byte(cfg.JWTSecret),
		bcryptCost: cost,
		cookieCfg: CookieConfig{
			Name:     accessTokenCookie,
			Path:     cookiePath,
			Domain:   cfg.CookieDomain,
			Secure:   cfg.Production,
			SameSite: http.SameSiteNoneMode,
			MaxAge:   int(accessTokenTTL.Seconds()),
		},
	}, nil
}

func (s *AuthService) CookieConfig() CookieConfig {
	return s.cookieCfg
}

// HashPassword produces a salted digest that embeds its own cost, so the cost
// can be retuned without breaking verification of stored digests.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored digest. A
// malformed digest counts as a mismatch, never an error.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// IssueToken signs a bearer token carrying the subject email and roles.
func (s *AuthService) IssueToken(email string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := authClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken verifies signature and expiry. Expiry is a strict comparison
// against this process's clock; no skew is compensated.
func (s *AuthService) ParseToken(tokenStr string) (*model.AuthUser, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &model.AuthUser{
		Email: claims.Subject,
		Roles: claims.Roles,
	}, nil
}

// Authorize runs the per-request gate: missing token, then signature/expiry,
// then the revocation set. Role checks happen on the route.
func (s *AuthService) Authorize(token string) (*model.AuthUser, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	user, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}

	if s.blacklist.IsRevoked(token) {
		return nil, ErrRevokedToken
	}

	return user, nil
}

// Login checks the identity and issues a 7-day token. An unknown email and a
// wrong password fail differently on purpose; the distinction matches the
// messages clients already depend on.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoDocuments(err) {
			return nil, "", fmt.Errorf("%w: wrong email or password", ErrNotFound)
		}
		return nil, "", err
	}

	if !user.Active {
		return nil, "", ErrInactive
	}

	if !CheckPassword(password, user.Password) {
		return nil, "", ErrBadCredential
	}

	token, err := s.IssueToken(user.Email, user.Roles, accessTokenTTL)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Logout revokes the presented token. A request with no token at all is an
// error, not a no-op; revoking twice is.
func (s *AuthService) Logout(token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}
	s.blacklist.Revoke(token)
	return nil
}

func parseBcryptCost(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return bcrypt.DefaultCost, nil
	}
	cost, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return 0, fmt.Errorf("bcrypt cost out of range: %d", cost)
	}
	return cost, nil
}
