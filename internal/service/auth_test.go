package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camshop/backend/internal/config"
	"github.com/camshop/backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserFinder struct {
	users map[string]*model.User
}

func (f *fakeUserFinder) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	return nil, mongo.ErrNoDocuments
}

func newTestAuthService(t *testing.T, finder UserFinder) *AuthService {
	t.Helper()
	svc, err := NewAuthService(finder, NewBlacklist(), config.AuthConfig{
		JWTSecret:  "test-secret",
		BcryptCost: "4",
	})
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func testUser(t *testing.T, email, password string, active bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return &model.User{
		Name:     "tester",
		Email:    email,
		Password: string(hash),
		Roles:    []string{model.RoleCustomer},
		Active:   active,
	}
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(&fakeUserFinder{}, NewBlacklist(), config.AuthConfig{})
	if !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured, got %v", err)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserFinder{})

	digest, err := svc.HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !CheckPassword("s3cret-pw", digest) {
		t.Fatalf("password should verify against its own digest")
	}
	if CheckPassword("other-pw", digest) {
		t.Fatalf("wrong password should not verify")
	}
	if CheckPassword("s3cret-pw", "not-a-bcrypt-digest") {
		t.Fatalf("malformed digest should verify false, not panic")
	}

	// Two hashes of the same input differ because of the per-call salt.
	second, err := svc.HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if digest == second {
		t.Fatalf("expected salted digests to differ")
	}
}

func TestIssueAndParseToken(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserFinder{})

	token, err := svc.IssueToken("a@x.com", []string{model.RoleAdmin, model.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	user, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected subject a@x.com, got %s", user.Email)
	}
	if !user.HasAnyRole(model.RoleAdmin) || !user.HasAnyRole(model.RoleEmployee) {
		t.Fatalf("roles not carried: %v", user.Roles)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserFinder{})

	token, err := svc.IssueToken("a@x.com", []string{model.RoleCustomer}, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseTokenRejectsTampered(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserFinder{})

	token, err := svc.IssueToken("a@x.com", []string{model.RoleCustomer}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.ParseToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	if _, err := svc.ParseToken("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	finder := &fakeUserFinder{users: map[string]*model.User{
		"a@x.com":        testUser(t, "a@x.com", "P1-password", true),
		"inactive@x.com": testUser(t, "inactive@x.com", "P1-password", false),
	}}
	svc := newTestAuthService(t, finder)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"unknown-email", "nobody@x.com", "P1-password", ErrNotFound},
		{"inactive", "inactive@x.com", "P1-password", ErrInactive},
		{"wrong-password", "a@x.com", "nope", ErrBadCredential},
		{"success", "a@x.com", "P1-password", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Email != tt.email || token == "" {
				t.Fatalf("expected user and token, got user=%v token=%q", user, token)
			}
			if _, err := svc.ParseToken(token); err != nil {
				t.Fatalf("issued token should verify: %v", err)
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	finder := &fakeUserFinder{users: map[string]*model.User{
		"a@x.com": testUser(t, "a@x.com", "P1-password", true),
	}}
	svc := newTestAuthService(t, finder)

	_, token, err := svc.Login(context.Background(), "a@x.com", "P1-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.Authorize(token); err != nil {
		t.Fatalf("fresh token should authorize: %v", err)
	}

	if err := svc.Logout(token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	// The signature is still valid, only the gate rejects it.
	if _, err := svc.ParseToken(token); err != nil {
		t.Fatalf("revoked token should still parse: %v", err)
	}
	if _, err := svc.Authorize(token); !errors.Is(err, ErrRevokedToken) {
		t.Fatalf("expected ErrRevokedToken, got %v", err)
	}
}

func TestLogoutWithoutToken(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserFinder{})
	if err := svc.Logout(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthorizeMissingToken(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserFinder{})
	if _, err := svc.Authorize("  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}
