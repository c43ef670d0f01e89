package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-service/internal/api/dto"
	"github.com/spec-kit/talent-service/internal/service"
	"github.com/spec-kit/talent-service/internal/tenant"
	apperrors "github.com/spec-kit/talent-service/pkg/util"
)

// UsersHandler serves the caller's own profile.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := tenant.RequireUserID(ctx)
	if err != nil {
		return apperrors.FromTenantError(err)
	}

	user, err := h.auth.Profile(ctx, userID)
	if err != nil {
		return err
	}

	resp := dto.NewUserResponse(user)
	if tc, ok := tenant.FromContext(ctx); ok && tc.OrganizationID != 0 {
		// The token's claim stands in when the record has no organization.
		orgID := tc.OrganizationID
		resp.OrganizationID = &orgID
	}
	return c.JSON(fiber.Map{"data": resp})
}
