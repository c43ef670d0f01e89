package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-service/internal/domain"
	"github.com/spec-kit/talent-service/internal/repository"
	"github.com/spec-kit/talent-service/internal/tenant"
	apperrors "github.com/spec-kit/talent-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller as of this request.
type Principal struct {
	User *domain.User
	// OrganizationID is the live record's organization, or the access token's
	// claim when the record has none.
	OrganizationID *int64
	Claims         *AccessClaims
}

// UserFinder loads the live user record.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// AuthMiddleware validates bearer access tokens and loads principals.
type AuthMiddleware struct {
	issuer *Issuer
	users  UserFinder
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(issuer *Issuer, users UserFinder) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.issuer.VerifyAccess(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.FindByID(c.UserContext(), claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.Role.Valid() {
		return apperrors.NewForbidden("unknown role")
	}

	orgID := user.OrganizationID
	if orgID == nil {
		orgID = claims.OrganizationID
	}

	c.Locals(principalKey, &Principal{User: user, OrganizationID: orgID, Claims: claims})
	return c.Next()
}

// TenantScope installs the tenant context for the rest of the chain and
// restores the previous user context on every exit path. Without a principal
// it passes through untouched.
func TenantScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.Next()
		}

		tc := tenant.Context{UserID: principal.User.ID, Role: principal.User.Role}
		if principal.OrganizationID != nil {
			tc.OrganizationID = *principal.OrganizationID
		}

		prev := c.UserContext()
		defer c.SetUserContext(prev)
		return tenant.Run(prev, tc, func(ctx context.Context) error {
			c.SetUserContext(ctx)
			return c.Next()
		})
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
