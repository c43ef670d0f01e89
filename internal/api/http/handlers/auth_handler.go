package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-service/internal/api/dto"
	"github.com/spec-kit/talent-service/internal/auth"
	"github.com/spec-kit/talent-service/internal/service"
	apperrors "github.com/spec-kit/talent-service/pkg/util"
)

// AuthHandler exposes register, login and refresh.
type AuthHandler struct {
	auth   *service.AuthService
	cookie auth.CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie auth.CookieConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Register(c.UserContext(), req.FullName, req.Email, req.Password)
	if err != nil {
		return err
	}

	auth.SetRefreshCookie(c, h.cookie, res.Tokens.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		AccessToken: res.Tokens.AccessToken,
		User:        dto.NewUserResponse(res.User),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	auth.SetRefreshCookie(c, h.cookie, res.Tokens.RefreshToken)
	return c.JSON(dto.AuthResponse{
		AccessToken: res.Tokens.AccessToken,
		User:        dto.NewUserResponse(res.User),
	})
}

// Refresh handles POST /auth/refresh. Only the cookie is consulted.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	res, err := h.auth.Refresh(c.UserContext(), auth.RefreshTokenFromCookie(c, h.cookie))
	if err != nil {
		return err
	}

	if res.Rotated {
		auth.SetRefreshCookie(c, h.cookie, res.Tokens.RefreshToken)
	}
	return c.JSON(dto.RefreshResponse{AccessToken: res.Tokens.AccessToken})
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(dst)
}
