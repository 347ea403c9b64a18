package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/camshop/backend/internal/db"
	"github.com/camshop/backend/internal/model"
	"github.com/google/uuid"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByEmailAndResetToken(ctx context.Context, email, resetToken string) (*model.User, error)
	HasDuplicateName(ctx context.Context, name, excludeID string) (bool, error)
	ListUsers(ctx context.Context, q model.ListQuery) ([]model.User, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) (*model.User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, resetToken string) error
	ConsumeResetToken(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) (*model.User, error)
	DeleteOwned(ctx context.Context, userID string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type MediaStore interface {
	Upload(ctx context.Context, name string, content io.Reader) (model.Image, error)
	Delete(ctx context.Context, publicIDs []string) error
}

type Hasher interface {
	HashPassword(password string) (string, error)
}

// FileUpload is one multipart file handed down from the HTTP layer.
type FileUpload struct {
	Name         string
	OriginalName string
	Content      io.Reader
}

type CreateUserParams struct {
	Name     string
	Email    string
	Password string
	Roles    []string
	Files    []FileUpload
}

type UpdateUserParams struct {
	Name  string
	Email string
	Roles []string
	Files []FileUpload
}

type UserService struct {
	repo     UserStore
	mailer   Mailer
	media    MediaStore
	hasher   Hasher
	appURL   string
	maxLimit int64
}

func NewUserService(repo UserStore, mailer Mailer, media MediaStore, hasher Hasher, appURL string, maxLimit int64) *UserService {
	return &UserService{
		repo:     repo,
		mailer:   mailer,
		media:    media,
		hasher:   hasher,
		appURL:   strings.TrimRight(appURL, "/"),
		maxLimit: maxLimit,
	}
}

func (s *UserService) List(ctx context.Context, params model.ListParams) ([]model.User, error) {
	q, err := ComposeListQuery(params, UserListResource, s.maxLimit)
	if err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx, q)
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err, id)
	}
	return user, nil
}

// Create registers a new identity. The name must be unique under the store's
// case-insensitive collation, at least one image is required, and roles
// default to customer.
func (s *UserService) Create(ctx context.Context, params CreateUserParams) (*model.User, error) {
	duplicate, err := s.repo.HasDuplicateName(ctx, params.Name, "")
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, fmt.Errorf("%w: name %q", ErrDuplicate, params.Name)
	}

	if len(params.Files) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", ErrInvalidInput)
	}

	images, err := s.uploadAll(ctx, params.Files)
	if err != nil {
		return nil, err
	}

	roles := params.Roles
	if len(roles) == 0 {
		roles = []string{model.RoleCustomer}
	}

	hash, err := s.hasher.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     params.Name,
		Email:    params.Email,
		Password: hash,
		Roles:    roles,
		Active:   true,
		Images:   images,
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: user already exists", ErrDuplicate)
		}
		return nil, err
	}
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id string, params UpdateUserParams) (*model.User, error) {
	existing, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err, id)
	}

	duplicate, err := s.repo.HasDuplicateName(ctx, params.Name, id)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, fmt.Errorf("%w: name %q", ErrDuplicate, params.Name)
	}

	fields := map[string]any{
		"name":  params.Name,
		"email": params.Email,
	}

	if len(params.Roles) > 0 {
		fields["roles"] = params.Roles
	}

	// New images replace the old set; the old public IDs get removed from
	// the media service only once the store holds the new set.
	replacingImages := len(params.Files) > 0
	if replacingImages {
		images, err := s.uploadAll(ctx, params.Files)
		if err != nil {
			return nil, err
		}
		fields["image"] = images
	}

	updated, err := s.repo.UpdateUser(ctx, id, fields)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: email %q", ErrDuplicate, params.Email)
		}
		return nil, userLookupError(err, id)
	}

	if replacingImages {
		if ids := publicIDs(existing.Images); len(ids) > 0 {
			if err := s.media.Delete(ctx, ids); err != nil {
				return nil, err
			}
		}
	}

	return updated, nil
}

// Delete removes the user, every document they own, and every image they ever
// stored on the media service.
func (s *UserService) Delete(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return nil, userLookupError(err, id)
	}

	if err := s.repo.DeleteOwned(ctx, id); err != nil {
		return nil, err
	}

	if ids := publicIDs(user.Images); len(ids) > 0 {
		if err := s.media.Delete(ctx, ids); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// UpdatePassword verifies the old password before anything else; a wrong old
// password fails even when the new pair does not match either.
func (s *UserService) UpdatePassword(ctx context.Context, id, oldPassword, newPassword, confirmPassword string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err, id)
	}

	if !CheckPassword(oldPassword, user.Password) {
		return nil, fmt.Errorf("%w: invalid old password", ErrBadCredential)
	}

	if newPassword != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetPassword(ctx, id, hash); err != nil {
		return nil, err
	}

	user.Password = hash
	return user, nil
}

// ForgotPassword arms a single-use reset token on the identity and mails the
// reset link. The token never expires; only consumption invalidates it.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoDocuments(err) {
			return fmt.Errorf("%w: no user with email %s", ErrNotFound, email)
		}
		return err
	}

	resetToken := uuid.NewString()
	if err := s.repo.SetResetToken(ctx, user.ID.Hex(), resetToken); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/password/reset/%s?email=%s", s.appURL, resetToken, url.QueryEscape(email))
	return s.mailer.Send(ctx, email, "Password Reset Request", resetRequestBody(resetURL))
}

// ResetPassword consumes a reset token exactly once. The checks run in the
// order clients observe: unknown (email, token) pair, then password mismatch,
// then reuse.
func (s *UserService) ResetPassword(ctx context.Context, resetToken, email, newPassword, confirmPassword string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	user, err := s.repo.GetUserByEmailAndResetToken(ctx, email, resetToken)
	if err != nil {
		if db.IsNoDocuments(err) {
			return fmt.Errorf("%w: invalid reset token", ErrInvalidToken)
		}
		return err
	}

	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	if user.ResetTokenUsed {
		return ErrTokenUsed
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.ConsumeResetToken(ctx, user.ID.Hex(), hash); err != nil {
		return err
	}

	loginURL := s.appURL + "/login"
	return s.mailer.Send(ctx, user.Email, "Password Reset Successful", resetConfirmationBody(loginURL))
}

func (s *UserService) uploadAll(ctx context.Context, files []FileUpload) ([]model.Image, error) {
	images := make([]model.Image, 0, len(files))
	for _, f := range files {
		img, err := s.media.Upload(ctx, f.Name, f.Content)
		if err != nil {
			return nil, err
		}
		img.OriginalName = f.OriginalName
		images = append(images, img)
	}
	return images, nil
}

func publicIDs(images []model.Image) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.PublicID)
	}
	return ids
}

// userLookupError folds a malformed id and a missing document into the same
// client-visible kind.
func userLookupError(err error, id string) error {
	if db.IsInvalidID(err) {
		return fmt.Errorf("%w: invalid user ID: %s", ErrNotFound, id)
	}
	if db.IsNoDocuments(err) {
		return fmt.Errorf("%w: no user with ID %s", ErrNotFound, id)
	}
	return err
}

func resetRequestBody(resetURL string) string {
	return fmt.Sprintf(`<html>
  <body>
    <div class="container">
      <h1>Password Reset Request</h1>
      <p>You have requested to reset your password. Please click the following link to reset your password:</p>
      <p><a href="%s">Reset Password</a></p>
      <p>If you did not request to reset your password, please ignore this email.</p>
    </div>
  </body>
</html>`, resetURL)
}

func resetConfirmationBody(loginURL string) string {
	return fmt.Sprintf(`<html>
  <body>
    <div class="container">
      <h1>Password Reset Successful</h1>
      <p>Your password has been successfully reset. If you did not perform this action, please contact support immediately.</p>
      <p><a href="%s">Go Back To The Login Page</a></p>
    </div>
  </body>
</html>`, loginURL)
}
