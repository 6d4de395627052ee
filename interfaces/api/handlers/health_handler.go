package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskhub/domain/dto"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

// HealthCheck describes the backing store for /health
type HealthCheck struct {
	Store   string
	Version string
	Ping    func(ctx context.Context) error
	Events  func(ctx context.Context) (any, error)
	Cache   func(ctx context.Context) error
}

type HealthHandler struct {
	check HealthCheck
}

func NewHealthHandler(check HealthCheck) *HealthHandler {
	return &HealthHandler{check: check}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{Status: "ok", Store: h.check.Store, Version: h.check.Version}

	if h.check.Ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.check.Ping(ctx); err != nil {
			logger.ErrorContext(ctx, "Health check failed", "store", h.check.Store, "error", err)
			resp.Status = "unavailable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(utils.Response{
				Message: "Store unavailable",
				Data:    resp,
			})
		}
	}

	if h.check.Events != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		info, err := h.check.Events(ctx)
		if err != nil {
			// the stream is optional, report it without failing the check
			logger.WarnContext(ctx, "Event stream status unavailable", "error", err)
			info = fiber.Map{"status": "unavailable"}
		}
		resp.Events = info
	}

	if h.check.Cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		resp.Cache = "ok"
		if err := h.check.Cache(ctx); err != nil {
			// reads fall through to the store, so a cache outage is not fatal
			logger.WarnContext(ctx, "Read cache unavailable", "error", err)
			resp.Cache = "unavailable"
		}
	}
	return utils.SuccessResponse(c, resp)
}
