package utils

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/pkg/apperrors"
)

// ========== Response Structures ==========

// Response is the envelope shared by every endpoint
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ========== Success Responses ==========

func SuccessResponse(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Message: "OK",
		Data:    data,
	})
}

func CreatedResponse(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Message: "Created",
		Data:    data,
	})
}

func NoContentResponse(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// ========== Error Responses ==========

func ErrorResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Message: message,
		Data:    nil,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, err error) error {
	return ErrorResponse(c, fiber.StatusBadRequest, ValidationMessage(err))
}

func BadRequestResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, fiber.StatusBadRequest, message)
}

// StatusOf maps an error kind to its HTTP status. Conflicts are reported
// as 400 like every other client mistake.
func StatusOf(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindBadRequest, apperrors.KindConflict:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorFromAppError writes the envelope for err, hiding internal details
func ErrorFromAppError(c *fiber.Ctx, err error) error {
	return ErrorResponse(c, StatusOf(err), apperrors.MessageOf(err))
}
