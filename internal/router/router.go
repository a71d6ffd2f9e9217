package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/edupulse/studentsuccess-api/internal/config"
	"github.com/edupulse/studentsuccess-api/internal/handler"
	"github.com/edupulse/studentsuccess-api/internal/middleware"
	"github.com/edupulse/studentsuccess-api/internal/models"
	"github.com/edupulse/studentsuccess-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	CourseHandler      *handler.CourseHandler
	StudentHandler     *handler.StudentHandler
	PerformanceHandler *handler.PerformanceHandler
	TeacherHandler     *handler.TeacherHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.RequireRole(models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth, jwtMiddleware)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses, teacherOnly)
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware)
		deps.StudentHandler.Register(students, studentOnly)
	}

	if deps.PerformanceHandler != nil {
		performance := api.Group("/performance", jwtMiddleware)
		deps.PerformanceHandler.Register(performance, teacherOnly)
	}

	if deps.TeacherHandler != nil {
		teachers := api.Group("/teachers", jwtMiddleware, teacherOnly)
		deps.TeacherHandler.Register(teachers)
	}
}
