package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/talent-service/internal/api/http/handlers"
	"github.com/spec-kit/talent-service/internal/auth"
	"github.com/spec-kit/talent-service/internal/domain"
	"github.com/spec-kit/talent-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Candidates     *handlers.CandidatesHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.TenantScope())
	users.Get("/me", cfg.Users.Me)

	candidates := app.Group("/candidates", cfg.AuthMiddleware.Handle, auth.TenantScope(), auth.RequireOrganization())
	candidates.Post("", cfg.Candidates.Create)
	candidates.Get("", cfg.Candidates.List)
	candidates.Get("/:id", cfg.Candidates.Get)
	candidates.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Candidates.Delete)
}
