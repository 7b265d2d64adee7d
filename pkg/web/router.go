package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

var errInvalidJSON = errors.New("invalid JSON format")

// NewApp builds the fiber application serving every API route.
func NewApp(handlers *APIHandlers, requestLogging bool) *fiber.App {
	app := fiber.New()
	app.Use(cors.New())

	if requestLogging {
		app.Use(logger.New(logger.Config{
			DisableColors: true,
		}))
	}

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("forgeflow API")
	})

	app.Get("/health", handlers.HealthCheck)
	app.Get("/nodes", handlers.GetNodes)

	f := app.Group("/flows")
	f.Get("/", handlers.GetFlows)
	f.Post("/", handlers.CreateFlow)
	f.Get("/:id", handlers.GetFlow)
	f.Put("/:id", handlers.UpdateFlow)
	f.Delete("/:id", handlers.DeleteFlow)
	f.Post("/:id/run", handlers.RunFlow)
	f.Get("/:id/executions", handlers.GetFlowExecutions)

	e := app.Group("/executions")
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/stop", handlers.StopExecution)

	app.All("/hooks/*", handlers.Webhook)

	return app
}
