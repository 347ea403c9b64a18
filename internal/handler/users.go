package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/camshop/backend/internal/model"
	"github.com/camshop/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

func NewUserHandler(auth *service.AuthService, users *service.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// Login godoc
// @Summary Login
// @Tags users
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.setAccessCookie(c, token)
	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: fmt.Sprintf("User %s successfully login", user.Name),
		Data: model.LoginData{
			User:        user,
			AccessToken: token,
		},
	})
}

// Logout godoc
// @Summary Logout
// @Description Revokes the presented token and clears the cookie.
// @Tags users
// @Produce json
// @Success 200 {object} model.SuccessResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(extractToken(c, h.auth.CookieConfig().Name)); err != nil {
		writeServiceError(c, err)
		return
	}

	h.clearAccessCookie(c)
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Cookie Cleared"})
}

// ForgotPassword godoc
// @Summary Request a password reset email
// @Tags users
// @Accept json
// @Produce json
// @Param request body model.ForgotPasswordRequest true "Account email"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/users/password/forgot [post]
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: fmt.Sprintf("Reset password email sent successfully to %s", req.Email),
	})
}

// ResetPassword godoc
// @Summary Complete a password reset
// @Description Consumes the reset token exactly once. Email arrives as a query parameter on the emailed link.
// @Tags users
// @Accept json
// @Produce json
// @Param email query string true "Account email"
// @Param request body model.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 410 {object} model.ErrorResponse
// @Router /api/v1/users/password/reset [put]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resetToken, newPassword and confirmPassword are required"})
		return
	}

	email := c.Query("email")
	err := h.users.ResetPassword(c.Request.Context(), req.ResetToken, email, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: fmt.Sprintf("Password updated successfully for user with email %s", email),
	})
}

// UpdatePassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body model.UpdatePasswordRequest true "Old and new passwords"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/users/updatePassword/{id} [patch]
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req model.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "oldPassword, newPassword and confirmPassword are required"})
		return
	}

	user, err := h.users.UpdatePassword(c.Request.Context(), c.Param("id"), req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: "Password Successfully Updated",
		Data:    user,
	})
}

// GetUsers godoc
// @Summary List users
// @Description Paginated, searchable, sortable, filterable list.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 100)"
// @Param search query string false "Case-insensitive name search"
// @Param sort query string false "field:asc or field:desc"
// @Param filter query string false "field:value exact match"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/users [get]
func (h *UserHandler) GetUsers(c *gin.Context) {
	params := model.ListParams{
		Page:   c.Query("page"),
		Limit:  c.Query("limit"),
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Filter: c.Query("filter"),
	}

	users, err := h.users.List(c.Request.Context(), params)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if len(users) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no users found"})
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: fmt.Sprintf("%d users retrieved", len(users)),
		Data:    users,
	})
}

// GetUser godoc
// @Summary Get a single user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: fmt.Sprintf("User %s with ID %s retrieved", user.Name, user.ID.Hex()),
		Data:    user,
	})
}

// CreateUser godoc
// @Summary Register a new user
// @Description Multipart form: name, email, password, optional roles, one or more image files.
// @Tags users
// @Accept mpfd
// @Produce json
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	if name == "" || email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	}

	files, closeFiles, err := openUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	defer closeFiles()

	user, err := h.users.Create(c.Request.Context(), service.CreateUserParams{
		Name:     name,
		Email:    email,
		Password: password,
		Roles:    parseRoles(c.PostForm("roles")),
		Files:    files,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: fmt.Sprintf("New user %s created with an ID %s", user.Name, user.ID.Hex()),
		Data:    user,
	})
}

// UpdateUser godoc
// @Summary Update a user
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/users/edit/{id} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	if name == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}

	files, closeFiles, err := openUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	defer closeFiles()

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), service.UpdateUserParams{
		Name:  name,
		Email: email,
		Roles: parseRoles(c.PostForm("roles")),
		Files: files,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: fmt.Sprintf("User %s with ID %s is updated", user.Name, user.ID.Hex()),
		Data:    user,
	})
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Cascades to owned notes, cameras, transactions and stored images.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, err := h.users.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{
		Message: fmt.Sprintf("User %s with ID %s is deleted", user.Name, user.ID.Hex()),
		Data:    user,
	})
}

func (h *UserHandler) setAccessCookie(c *gin.Context, token string) {
	cfg := h.auth.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, token, cfg.MaxAge, cfg.Path, cfg.Domain, cfg.Secure, true)
}

func (h *UserHandler) clearAccessCookie(c *gin.Context) {
	cfg := h.auth.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, "", -1, cfg.Path, cfg.Domain, cfg.Secure, true)
}

// openUploads collects the "image" files from the multipart form, if any. The
// returned closer releases every opened file.
func openUploads(c *gin.Context) ([]service.FileUpload, func(), error) {
	closeAll := func() {}
	if c.ContentType() != "multipart/form-data" {
		return nil, closeAll, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, closeAll, err
	}

	var opened []multipart.File
	var files []service.FileUpload
	for _, header := range form.File["image"] {
		f, err := header.Open()
		if err != nil {
			for _, o := range opened {
				_ = o.Close()
			}
			return nil, closeAll, err
		}
		opened = append(opened, f)
		files = append(files, service.FileUpload{
			Name:         header.Filename,
			OriginalName: header.Filename,
			Content:      f,
		})
	}

	return files, func() {
		for _, o := range opened {
			_ = o.Close()
		}
	}, nil
}

// parseRoles accepts the original comma-separated form value.
func parseRoles(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMissingToken),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrRevokedToken),
		errors.Is(err, service.ErrBadCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInactive), errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTokenUsed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
