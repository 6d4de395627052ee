package handlers

import (
	"taskhub/domain/services"
	wsmanager "taskhub/infrastructure/websocket"
)

// Services contains all the services needed for handlers
type Services struct {
	UserService services.UserService
	TaskService services.TaskService
	Health      HealthCheck
	Hub         *wsmanager.Manager
}

// Handlers contains all HTTP handlers
type Handlers struct {
	UserHandler   *UserHandler
	TaskHandler   *TaskHandler
	HealthHandler *HealthHandler
	Hub           *wsmanager.Manager
}

func NewHandlers(services *Services) *Handlers {
	return &Handlers{
		UserHandler:   NewUserHandler(services.UserService),
		TaskHandler:   NewTaskHandler(services.TaskService),
		HealthHandler: NewHealthHandler(services.Health),
		Hub:           services.Hub,
	}
}
