package middleware

import (
	"errors"
	"net/http"
	"strings"

	"auth_service/internal/model"
	"auth_service/internal/service"
	"auth_service/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "user_access_token"
	RefreshTokenCookie = "user_refresh_token"

	AuthUserKey = "authUser"
)

// AccessTokenMiddleware authenticates the request with the access token
// cookie, falling back to an Authorization: Bearer header.
func AccessTokenMiddleware(svc service.AuthService) gin.HandlerFunc {
	return tokenMiddleware(svc, utils.TokenTypeAccess, func(c *gin.Context) string {
		if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
			return token
		}
		return bearerToken(c.GetHeader("Authorization"))
	})
}

// RefreshTokenMiddleware authenticates the request with the refresh token cookie
func RefreshTokenMiddleware(svc service.AuthService) gin.HandlerFunc {
	return tokenMiddleware(svc, utils.TokenTypeRefresh, func(c *gin.Context) string {
		token, _ := c.Cookie(RefreshTokenCookie)
		return token
	})
}

func tokenMiddleware(svc service.AuthService, tokenType string, extract func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extract(c)
		if token == "" {
			abortUnauthorized(c)
			return
		}

		user, err := svc.Authenticate(c.Request.Context(), token, tokenType)
		if err != nil {
			_ = c.Error(err)
			if !errors.Is(err, service.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
					Error: "internal server error",
					Code:  model.CodeInternal,
				})
				return
			}
			abortUnauthorized(c)
			return
		}

		c.Set(AuthUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by one of the token middlewares
func CurrentUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(AuthUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok && user != nil
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
		Error: service.ErrUnauthorized.Error(),
		Code:  model.CodeUnauthorized,
	})
}
