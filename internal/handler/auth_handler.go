package handler

import (
	"log/slog"
	"net/http"

	"auth_service/internal/config"
	"auth_service/internal/middleware"
	"auth_service/internal/model"
	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	cookies config.CookieConfig
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, cookies config.CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: s, cookies: cookies, logger: logger.With("component", "auth_handler")}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if _, err := h.service.Register(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registration successful"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	_, pair, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	setSessionCookies(c, h.cookies, pair)
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "login successful"})
}

// Logout clears both cookies. Tokens already issued stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookies(c, h.cookies)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, service.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (h *AuthHandler) AllUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Refresh issues a new token pair for the user of a valid refresh token
func (h *AuthHandler) Refresh(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, service.ErrUnauthorized)
		return
	}

	pair, err := h.service.IssueTokens(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	setSessionCookies(c, h.cookies, pair)
	c.JSON(http.StatusOK, gin.H{"message": "tokens refreshed"})
}

func (h *AuthHandler) AddRoles(c *gin.Context) {
	var req model.AddRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if _, err := h.service.AddRole(c.Request.Context(), req.Name); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "role added"})
}

// RegisterAuthRoutes registers auth routes on rg. Trailing slashes are part
// of the public paths.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, accessMW, refreshMW, adminMW gin.HandlerFunc) {
	rg.POST("/register/", h.Register)
	rg.POST("/login/", h.Login)
	rg.POST("/logout", h.Logout)
	rg.POST("/refresh", refreshMW, h.Refresh)

	admin := rg.Group("", accessMW, adminMW)
	{
		admin.GET("/all_users/", h.AllUsers)
		admin.POST("/addroles", h.AddRoles)
	}
	rg.GET("/me/", accessMW, h.Me)
}
