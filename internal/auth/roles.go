package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-service/internal/domain"
	"github.com/spec-kit/talent-service/internal/tenant"
	apperrors "github.com/spec-kit/talent-service/pkg/util"
)

// RequireRole ensures the installed tenant context carries one of the allowed
// roles. It must run after TenantScope.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		tc, ok := tenant.FromContext(c.UserContext())
		if !ok {
			return apperrors.NewContextMissing(tenant.ErrContextMissing)
		}
		if _, exists := allowedSet[tc.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireOrganization rejects callers not assigned to an organization.
func RequireOrganization() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := tenant.RequireOrganizationID(c.UserContext()); err != nil {
			return apperrors.FromTenantError(err)
		}
		return c.Next()
	}
}
