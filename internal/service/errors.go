package service

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("duplicate")
	ErrBadCredential    = errors.New("wrong password")
	ErrInactive         = errors.New("account is not active")
	ErrMissingToken     = errors.New("not logged in")
	ErrInvalidToken     = errors.New("invalid token")
	ErrRevokedToken     = errors.New("token revoked")
	ErrForbidden        = errors.New("insufficient role")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrTokenUsed        = errors.New("reset token already used")
	ErrMisconfigured    = errors.New("auth config invalid")
)
