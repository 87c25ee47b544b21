package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/market-desk/internal/api/http/handlers"
	"github.com/spec-kit/market-desk/internal/auth"
	"github.com/spec-kit/market-desk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	UserData       *handlers.UserDataHandler
	Contact        *handlers.ContactHandler
	Admin          *handlers.AdminHandler
	Articles       *handlers.ArticlesHandler
	AuthMiddleware *auth.AuthMiddleware
	AdminPolicy    *auth.AdminPolicy
	AuthLimiter    fiber.Handler
	Metrics        *observability.Metrics
	StaticDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")

	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)

	authLimited := passthrough
	if cfg.AuthLimiter != nil {
		authLimited = cfg.AuthLimiter
	}
	api.Post("/auth/register", authLimited, cfg.Auth.Register)
	api.Post("/auth/login", authLimited, cfg.Auth.Login)
	api.Post("/login", authLimited, cfg.Auth.Login)

	api.Post("/contact", cfg.Contact.Submit)

	api.Get("/articles", cfg.Articles.List)
	api.Get("/articles/search", cfg.Articles.Search)

	user := api.Group("/user", cfg.AuthMiddleware.Handle)
	user.Get("/data", cfg.UserData.Get)
	user.Put("/data", cfg.UserData.Update)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin(cfg.AdminPolicy))
	admin.Get("/contacts", cfg.Admin.ListContacts)
	admin.Delete("/contacts/:id", cfg.Admin.DeleteContact)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}
}

func passthrough(c *fiber.Ctx) error {
	return c.Next()
}
