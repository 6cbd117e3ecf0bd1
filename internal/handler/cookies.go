package handler

import (
	"net/http"
	"time"

	"auth_service/internal/config"
	"auth_service/internal/middleware"
	"auth_service/internal/utils"

	"github.com/gin-gonic/gin"
)

// setSessionCookies writes both token cookies. Max-Age follows each token's expiry.
func setSessionCookies(c *gin.Context, cfg config.CookieConfig, pair *utils.TokenPair) {
	now := time.Now()
	setCookie(c, cfg, middleware.AccessTokenCookie, pair.AccessToken, maxAge(now, pair.AccessExpiresAt))
	setCookie(c, cfg, middleware.RefreshTokenCookie, pair.RefreshToken, maxAge(now, pair.RefreshExpiresAt))
}

func clearSessionCookies(c *gin.Context, cfg config.CookieConfig) {
	setCookie(c, cfg, middleware.AccessTokenCookie, "", -1)
	setCookie(c, cfg, middleware.RefreshTokenCookie, "", -1)
}

func setCookie(c *gin.Context, cfg config.CookieConfig, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", cfg.Domain, cfg.Secure, true)
}

func maxAge(now, expiresAt time.Time) int {
	secs := int(expiresAt.Sub(now).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}
