package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coaching-service/internal/api/http/handlers"
	"github.com/spec-kit/coaching-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Problems *handlers.ProblemsHandler
	Notes    *handlers.NotesHandler
	Gate     *auth.Gate
}

// RegisterRoutes wires HTTP routes. The gate runs for every request after the global
// middlewares; RequireIdentity guards the protected groups.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	requireIdentity := auth.RequireIdentity()

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", requireIdentity, cfg.Auth.Me)

	problems := app.Group("/problems", requireIdentity)
	problems.Get("", cfg.Problems.List)
	problems.Put("/:problemId/solve", cfg.Problems.ToggleSolved)
	problems.Put("/:problemId/star", cfg.Problems.ToggleStarred)

	users := app.Group("/users/:userId", requireIdentity)
	for _, prefix := range []string{"/notes", "/problem-notes"} {
		users.Get(prefix, cfg.Notes.List)
		users.Put(prefix+"/:problemId", cfg.Notes.Save)
	}
}
