package handler

import (
	"strings"

	"github.com/camshop/backend/internal/config"
	"github.com/camshop/backend/internal/model"
	"github.com/camshop/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the route table. Public routes come first; everything below
// the gate runs AuthMiddleware and a per-route role check.
func NewRouter(cfg config.ServerConfig, auth *service.AuthService, users *service.UserService) *gin.Engine {
	router := gin.Default()

	if origins := splitOrigins(cfg.AllowedOrigins); len(origins) > 0 {
		router.Use(CORSMiddleware(origins, true))
	}

	router.GET("/ping", Ping)
	router.GET("/", Root)

	h := NewUserHandler(auth, users)

	v1 := router.Group("/api/v1/users")
	v1.POST("/login", h.Login)
	v1.POST("/logout", h.Logout)
	v1.POST("/password/forgot", h.ForgotPassword)
	v1.PUT("/password/reset", h.ResetPassword)
	v1.POST("", h.CreateUser)

	protected := v1.Group("")
	protected.Use(AuthMiddleware(auth))
	protected.GET("", RequireRoles(model.RoleAdmin), h.GetUsers)
	protected.GET("/:id", RequireRoles(model.RoleAdmin, model.RoleEmployee, model.RoleCustomer), h.GetUser)
	protected.PATCH("/edit/:id", RequireRoles(model.RoleAdmin, model.RoleEmployee, model.RoleCustomer), h.UpdateUser)
	protected.PATCH("/updatePassword/:id", RequireRoles(model.RoleAdmin, model.RoleEmployee, model.RoleCustomer), h.UpdatePassword)
	protected.DELETE("/:id", RequireRoles(model.RoleAdmin), h.DeleteUser)

	return router
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
