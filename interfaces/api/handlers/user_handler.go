package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/domain/dto"
	"taskhub/domain/query"
	"taskhub/domain/services"
	"taskhub/pkg/apperrors"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()

	q, err := query.Parse(query.UserSchema, listParams(c))
	if err != nil {
		return respondError(ctx, c, "Invalid list parameters", err)
	}

	if q.Count {
		count, err := h.userService.CountUsers(ctx, q)
		if err != nil {
			return respondError(ctx, c, "Failed to count users", err)
		}
		return utils.SuccessResponse(c, count)
	}

	users, err := h.userService.ListUsers(ctx, q)
	if err != nil {
		return respondError(ctx, c, "Failed to list users", err)
	}

	data, err := projectAll(q.Projection, dto.UsersToUserResponses(users))
	if err != nil {
		return respondError(ctx, c, "Failed to render users", apperrors.Internal("Failed to render users", err))
	}
	return utils.SuccessResponse(c, data)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := parseID(c, "Invalid user id")
	if err != nil {
		return respondError(ctx, c, "Invalid user id", err)
	}
	projection, err := query.ParseSelect(query.UserSchema, c.Query("select"))
	if err != nil {
		return respondError(ctx, c, "Invalid select parameter", err)
	}

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		return respondError(ctx, c, "Failed to get user", err)
	}

	data, err := project(projection, dto.UserToUserResponse(user))
	if err != nil {
		return respondError(ctx, c, "Failed to render user", apperrors.Internal("Failed to render user", err))
	}
	return utils.SuccessResponse(c, data)
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		logger.WarnContext(ctx, "Validation failed", "errors", utils.GetValidationErrors(err))
		return utils.ValidationErrorResponse(c, err)
	}

	user, err := h.userService.CreateUser(ctx, &req)
	if err != nil {
		return respondError(ctx, c, "User creation failed", err)
	}

	return utils.CreatedResponse(c, dto.UserToUserResponse(user))
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := parseID(c, "Invalid user id")
	if err != nil {
		return respondError(ctx, c, "Invalid user id", err)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		logger.WarnContext(ctx, "Validation failed", "errors", utils.GetValidationErrors(err))
		return utils.ValidationErrorResponse(c, err)
	}

	user, err := h.userService.UpdateUser(ctx, userID, &req)
	if err != nil {
		return respondError(ctx, c, "User update failed", err)
	}

	return utils.SuccessResponse(c, dto.UserToUserResponse(user))
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := parseID(c, "Invalid user id")
	if err != nil {
		return respondError(ctx, c, "Invalid user id", err)
	}

	if err := h.userService.DeleteUser(ctx, userID); err != nil {
		return respondError(ctx, c, "User deletion failed", err)
	}

	return utils.NoContentResponse(c)
}
