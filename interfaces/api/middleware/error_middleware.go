package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"taskhub/pkg/apperrors"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

// ErrorHandler renders errors that escape handlers, including the 404 and
// 405 errors raised by the router, as the response envelope
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		case errors.As(err, &appErr):
			code = utils.StatusOf(err)
			message = apperrors.MessageOf(err)
		}

		if code >= fiber.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "Unhandled error", "path", c.Path(), "error", err)
		}

		return utils.ErrorResponse(c, code, message)
	}
}
