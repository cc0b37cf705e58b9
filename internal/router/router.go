package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/planner-go-api/internal/config"
	"github.com/noah-isme/planner-go-api/internal/handler"
	"github.com/noah-isme/planner-go-api/internal/middleware"
	"github.com/noah-isme/planner-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SemesterHandler   *handler.SemesterHandler
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	DashboardHandler  *handler.DashboardHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
	RateLimiter       fiber.Handler
	HealthProbes      []handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}
	guards := []fiber.Handler{jwtMiddleware, middleware.RequireOwner(cfg.AllowedUserID)}
	if deps.RateLimiter != nil {
		guards = append(guards, deps.RateLimiter)
	}

	if deps.SemesterHandler != nil {
		deps.SemesterHandler.Register(api.Group("/semesters", guards...))
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/courses", guards...))
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", guards...))
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", guards...), api.Group("/schedule", guards...))
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed", guards...))
	}
}
