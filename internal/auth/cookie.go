package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RefreshCookiePath limits the refresh cookie to the auth routes.
const RefreshCookiePath = "/auth"

// CookieConfig describes the refresh-token cookie.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

// SetRefreshCookie writes token as an HttpOnly, SameSite=Strict cookie.
func SetRefreshCookie(c *fiber.Ctx, cfg CookieConfig, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     RefreshCookiePath,
		Domain:   cfg.Domain,
		MaxAge:   int(RefreshTokenTTL / time.Second),
		Expires:  time.Now().Add(RefreshTokenTTL),
		Secure:   cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// RefreshTokenFromCookie returns the presented refresh token, or "".
func RefreshTokenFromCookie(c *fiber.Ctx, cfg CookieConfig) string {
	return c.Cookies(cfg.Name)
}
