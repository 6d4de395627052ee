package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/interfaces/api/handlers"
)

func SetupUserRoutes(router fiber.Router, h *handlers.Handlers) {
	users := router.Group("/users")
	users.Get("/", h.UserHandler.ListUsers)
	users.Post("/", h.UserHandler.CreateUser)
	users.Get("/:id", h.UserHandler.GetUser)
	users.Put("/:id", h.UserHandler.UpdateUser)
	users.Delete("/:id", h.UserHandler.DeleteUser)
}
