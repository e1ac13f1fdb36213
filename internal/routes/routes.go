package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/config"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/handlers"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/middleware"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/notifications"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/repository"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/services"
)

func Register(app *fiber.App, cfg *config.Config, pool *pgxpool.Pool, notifier notifications.Notifier, log *zap.Logger) {
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	gateway := services.NewHTTPPaymentGateway(cfg.PaymentServiceURL)
	rooms := services.NewJitsiRoomProvisioner(cfg.VideoRoomBaseURL)

	sessionService := services.NewSessionService(pool, gateway, rooms, notifier, log)
	availabilityService := services.NewAvailabilityService(
		repository.NewAvailabilityRepository(pool),
		repository.NewSessionRepository(pool),
		log,
	)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Public discovery endpoints for the booking flow.
	api.Get("/therapists/:id/availability", availabilityHandler.ListWindows)
	api.Get("/therapists/:id/slots", availabilityHandler.Slots)
	api.Get("/therapists/:id/bookable", availabilityHandler.BookableDates)

	auth := middleware.RequireAuth(cfg.JWTSecret)

	availability := api.Group("/availability", auth)
	availability.Post("/", availabilityHandler.AddWindow)
	availability.Put("/:id", availabilityHandler.UpdateWindow)
	availability.Delete("/:id", availabilityHandler.RemoveWindow)

	sessions := api.Group("/sessions", auth)
	sessions.Post("/", sessionHandler.Create)
	sessions.Get("/", sessionHandler.List)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Post("/:id/confirm", sessionHandler.Confirm)
	sessions.Post("/:id/cancel", sessionHandler.Cancel)
	sessions.Post("/:id/complete", sessionHandler.Complete)
	sessions.Put("/:id/note", sessionHandler.SetNote)
	sessions.Get("/:id/live", sessionHandler.Live)
	sessions.Post("/:id/join", sessionHandler.Join)
}
