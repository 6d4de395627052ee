package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/interfaces/api/handlers"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers) {
	SetupHealthRoutes(app, h)
	SetupUserRoutes(app, h)
	SetupTaskRoutes(app, h)

	if h.Hub != nil {
		SetupWebSocketRoutes(app, h)
	}
}
